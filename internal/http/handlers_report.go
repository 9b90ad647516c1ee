package http

import (
	"net/http"
)

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := s.service.Report(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (s *Server) handleRunningBalances(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	points, err := s.service.RunningBalances(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]balancePointResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, balancePointResponse{
			Transaction: toTransactionResponse(p.Transaction),
			Balance:     p.Balance.String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := healthResponse{Status: "ok", RequestsTotal: s.tracer.TotalRequests()}
	if err := s.service.Ping(r.Context()); err != nil {
		body.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
