package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"forgeledger/internal/core"
	applog "forgeledger/internal/log"
	"forgeledger/internal/middleware/trace"
	"forgeledger/internal/services"
)

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	CategoryID  int64  `json:"category_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type summaryResponse struct {
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	NetBalance   string `json:"net_balance"`
	Count        int    `json:"count"`
}

type categoryTotalResponse struct {
	CategoryID int64  `json:"category_id"`
	Type       string `json:"type"`
	Total      string `json:"total"`
	Count      int    `json:"count"`
	Percent    string `json:"percent"`
}

type monthTotalResponse struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
	Count   int    `json:"count"`
}

type reportResponse struct {
	Summary    summaryResponse         `json:"summary"`
	ByCategory []categoryTotalResponse `json:"by_category"`
	ByMonth    []monthTotalResponse    `json:"by_month"`
}

type balancePointResponse struct {
	Transaction transactionResponse `json:"transaction"`
	Balance     string              `json:"balance"`
}

type healthResponse struct {
	Status        string `json:"status"`
	RequestsTotal int64  `json:"requests_total"`
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string               `json:"error"`
	Fields []fieldErrorResponse `json:"fields,omitempty"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Type: string(c.Type)}
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Amount:      t.Amount.String(),
		Type:        string(t.Type),
		CategoryID:  t.CategoryID,
		Date:        t.Date.String(),
		Description: t.Description,
	}
}

func toReportResponse(r services.Report) reportResponse {
	resp := reportResponse{
		Summary: summaryResponse{
			TotalIncome:  r.Summary.TotalIncome.String(),
			TotalExpense: r.Summary.TotalExpense.String(),
			NetBalance:   r.Summary.NetBalance.String(),
			Count:        r.Summary.Count,
		},
		ByCategory: make([]categoryTotalResponse, 0, len(r.ByCategory)),
		ByMonth:    make([]monthTotalResponse, 0, len(r.ByMonth)),
	}
	for _, ct := range r.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryTotalResponse{
			CategoryID: ct.CategoryID,
			Type:       string(ct.Type),
			Total:      ct.Total.String(),
			Count:      ct.Count,
			Percent:    ct.Percent.StringFixed(2),
		})
	}
	for _, mt := range r.ByMonth {
		resp.ByMonth = append(resp.ByMonth, monthTotalResponse{
			Year:    mt.Year,
			Month:   mt.Month,
			Income:  mt.Income.String(),
			Expense: mt.Expense.String(),
			Net:     mt.Net.String(),
			Count:   mt.Count,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Validation failures
// keep their per-field detail; conflicts and lookups collapse to their
// message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr        *requestError
		validationErr *core.ValidationError
		notFoundErr   *core.NotFoundError
		duplicateErr  *core.DuplicateNameError
		mismatchErr   *core.TypeMismatchError
		inUseErr      *core.CategoryInUseError
	)

	switch {
	case errors.As(err, &reqErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: reqErr.Error()})
	case errors.As(err, &validationErr):
		resp := errorResponse{Error: "validation failed"}
		for _, f := range validationErr.Fields {
			resp.Fields = append(resp.Fields, fieldErrorResponse{
				Field:   f.Field,
				Code:    f.Code,
				Message: f.Message,
			})
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFoundErr.Error()})
	case errors.As(err, &duplicateErr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: duplicateErr.Error()})
	case errors.As(err, &mismatchErr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: mismatchErr.Error()})
	case errors.As(err, &inUseErr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: inUseErr.Error()})
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldRequestID, trace.GetRequestID(r.Context()),
			applog.FieldError, err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
