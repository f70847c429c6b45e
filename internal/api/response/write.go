package response

import (
	"encoding/json"
	"net/http"
)

// Envelope wraps every successful payload
type Envelope struct {
	Success  bool `json:"success"`
	Response any  `json:"response"`
}

// JSON writes data inside a success envelope
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Response: data})
}
