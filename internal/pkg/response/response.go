package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/futig/planner-backend/internal/entity"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// Headers are already sent, nothing left to report to the client
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error response with the status text and a message
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// File writes a downloadable attachment
func File(w http.ResponseWriter, contentType, filename string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
