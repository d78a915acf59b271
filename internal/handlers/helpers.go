package handlers

import (
	"fmt"
	"net/http"

	"events-marketplace-web/internal/middleware"
)

// handleRedirect handles redirects appropriately for HTMX vs regular requests
func handleRedirect(w http.ResponseWriter, r *http.Request, url string, statusCode int) {
	if middleware.IsHTMXRequest(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
	} else {
		http.Redirect(w, r, url, statusCode)
	}
}

// renderNotice writes a transient notification fragment.
func renderNotice(w http.ResponseWriter, tone, message string) {
	colors := "bg-green-50 border-green-200 text-green-800"
	if tone == "error" {
		colors = "bg-red-50 border-red-200 text-red-800"
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `
		<div class="%s border rounded-md p-3 mb-4">
			<p class="text-sm">%s</p>
		</div>
	`, colors, message)
}

// pageURL reconstructs the absolute URL of the current request, used to
// derive the success/cancel return URLs for redirect-based payments.
func pageURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.Path)
}
