package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// OKResponse writes data as a JSON body with status 200.
func OKResponse(w http.ResponseWriter, r *http.Request, data any) {
	JSONResponse(w, r, http.StatusOK, data)
}

// ErrorResponse writes {"error": message} with the given status.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSONResponse(w, r, status, map[string]string{"error": message})
}

// JSONResponse writes data with the given status. The status is already
// sent when encoding fails, so the error is only logged.
func JSONResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		Logger(r.Context(), zap.L()).Error("failed to encode response",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
}

// MessageResponse is the body of endpoints that only acknowledge a request.
type MessageResponse struct {
	Message string `json:"message"`
}

// HandleHello answers GET /.
func HandleHello(w http.ResponseWriter, r *http.Request) {
	OKResponse(w, r, MessageResponse{Message: "Hello, world!"})
}
