package zillow

import "net/http"

// HTTPTransport exposes the fetcher's transport so tests can trust a TLS test server.
func (f *Fetcher) HTTPTransport() *http.Transport {
	return f.client.Transport.(*http.Transport)
}
