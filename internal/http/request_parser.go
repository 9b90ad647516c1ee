package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"forgeledger/internal/core"
	"forgeledger/internal/services"
)

const maxBodyBytes = 1 << 20 // 1 MiB is plenty for any ledger payload

type categoryRequest struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

type transactionRequest struct {
	Amount      *string `json:"amount"`
	Type        *string `json:"type"`
	CategoryID  *int64  `json:"category_id"`
	Date        *string `json:"date"`
	Description *string `json:"description"`
}

func decodeBody(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// parseTransactionCreate turns a request body into a transaction, folding
// malformed amount and date strings into the same field-level errors the
// domain validation produces.
func parseTransactionCreate(r *http.Request) (core.Transaction, error) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		return core.Transaction{}, badRequest(err.Error())
	}

	v := &core.ValidationError{}
	var t core.Transaction

	if req.Amount == nil {
		v.Fields = append(v.Fields, core.FieldError{Field: "amount", Code: core.CodeRequired, Message: "amount is required"})
	} else if amount, err := core.ParseAmount(*req.Amount); err != nil {
		v.Fields = append(v.Fields, amountFieldError(err))
	} else {
		t.Amount = amount
	}

	if req.Type != nil {
		t.Type = core.EntryType(*req.Type)
	}
	if req.CategoryID != nil {
		t.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		t.Description = *req.Description
	}

	if req.Date == nil {
		v.Fields = append(v.Fields, core.FieldError{Field: "date", Code: core.CodeRequired, Message: "date is required"})
	} else if date, err := core.ParseDate(*req.Date); err != nil {
		v.Fields = append(v.Fields, core.FieldError{Field: "date", Code: core.CodeInvalid, Message: "date must be formatted YYYY-MM-DD"})
	} else {
		t.Date = date
	}

	if len(v.Fields) > 0 {
		return core.Transaction{}, v
	}
	return t, nil
}

// parseTransactionUpdate reads a partial update; absent fields stay nil.
func parseTransactionUpdate(r *http.Request) (services.TransactionUpdate, error) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		return services.TransactionUpdate{}, badRequest(err.Error())
	}

	v := &core.ValidationError{}
	var update services.TransactionUpdate

	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			v.Fields = append(v.Fields, amountFieldError(err))
		} else {
			update.Amount = &amount
		}
	}
	if req.Type != nil {
		typ := core.EntryType(*req.Type)
		update.Type = &typ
	}
	if req.CategoryID != nil {
		update.CategoryID = req.CategoryID
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			v.Fields = append(v.Fields, core.FieldError{Field: "date", Code: core.CodeInvalid, Message: "date must be formatted YYYY-MM-DD"})
		} else {
			update.Date = &date
		}
	}
	if req.Description != nil {
		update.Description = req.Description
	}

	if len(v.Fields) > 0 {
		return services.TransactionUpdate{}, v
	}
	return update, nil
}

func amountFieldError(err error) core.FieldError {
	switch {
	case errors.Is(err, core.ErrAmountNotPositive):
		return core.FieldError{Field: "amount", Code: core.CodeNotPositive, Message: "amount must be positive"}
	case errors.Is(err, core.ErrAmountTooPrecise):
		return core.FieldError{Field: "amount", Code: core.CodeTooPrecise, Message: "amount allows at most two fractional digits"}
	case errors.Is(err, core.ErrAmountTooLarge):
		return core.FieldError{Field: "amount", Code: core.CodeTooManyDigit, Message: "amount exceeds the supported magnitude"}
	default:
		return core.FieldError{Field: "amount", Code: core.CodeInvalid, Message: "amount must be a decimal number"}
	}
}

// parseFilter builds a transaction filter from query parameters:
// type, category_ids (comma-separated), date_from, date_to.
func parseFilter(values url.Values) (core.Filter, error) {
	var f core.Filter

	if raw := values.Get("type"); raw != "" {
		typ := core.EntryType(raw)
		if !typ.Valid() {
			return core.Filter{}, badRequest(fmt.Sprintf("unknown type %q", raw))
		}
		f.Type = &typ
	}

	if raw := values.Get("category_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return core.Filter{}, badRequest(fmt.Sprintf("invalid category id %q", part))
			}
			f.CategoryIDs = append(f.CategoryIDs, id)
		}
	}

	if raw := values.Get("date_from"); raw != "" {
		date, err := core.ParseDate(raw)
		if err != nil {
			return core.Filter{}, badRequest("date_from must be formatted YYYY-MM-DD")
		}
		f.DateFrom = &date
	}
	if raw := values.Get("date_to"); raw != "" {
		date, err := core.ParseDate(raw)
		if err != nil {
			return core.Filter{}, badRequest("date_to must be formatted YYYY-MM-DD")
		}
		f.DateTo = &date
	}

	return f, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, badRequest("id must be a positive integer")
	}
	return id, nil
}

// requestError is a malformed-request failure, reported as 400.
type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}

func badRequest(msg string) error {
	return &requestError{msg: msg}
}
