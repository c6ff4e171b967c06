package handlers

import (
	"fmt"
	"log"
	"net/http"
)

// PingHandler serves the health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "invalid method, only GET is allowed", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, "ok"); err != nil {
		log.Println(err)
	}
}
