package response

import (
	"encoding/json"
	"math"
	"net/http"
)

// Payload is merged into the top level of a success envelope.
type Payload map[string]interface{}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Success writes {"success": true, ...payload}.
func Success(w http.ResponseWriter, statusCode int, payload Payload) {
	body := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	JSON(w, statusCode, body)
}

// Message writes {"success": true, "message": message}.
func Message(w http.ResponseWriter, statusCode int, message string) {
	Success(w, statusCode, Payload{"message": message})
}

// Page writes a paginated listing under key, with count/total/pages/page.
func Page(w http.ResponseWriter, key string, items interface{}, count int, total int64, page, limit int) {
	Success(w, http.StatusOK, Payload{
		"count": count,
		"total": total,
		"pages": TotalPages(total, limit),
		"page":  page,
		key:     items,
	})
}

// TotalPages returns ceil(total/limit), or 0 for a non-positive limit.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, ErrorResponse{
		Success: false,
		Error:   message,
	})
}

func ValidationError(w http.ResponseWriter, details interface{}) {
	JSON(w, http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   "Validation failed",
		Details: details,
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	Error(w, http.StatusUnauthorized, message)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	Error(w, http.StatusForbidden, message)
}
