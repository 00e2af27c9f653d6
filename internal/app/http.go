package app

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns the shared client for page and image downloads.
// Per-request deadlines come from fetch.Client; the client timeout only
// guards against requests issued without one.
func newHTTPClient(insecureTLS bool) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if insecureTLS {
		// Only for self-signed internal mirrors.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Transport: transport,
		Timeout:   2 * time.Minute,
	}
}
