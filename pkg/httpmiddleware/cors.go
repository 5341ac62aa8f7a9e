package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls the Cross-Origin Resource Sharing middleware.
type CORSConfig struct {
	// AllowOrigins lists origins permitted to make cross-origin requests.
	// Empty, or a single "*", permits every origin.
	AllowOrigins []string

	// AllowMethods lists HTTP methods for actual requests. Empty means
	// "GET, POST, PUT, DELETE, OPTIONS".
	AllowMethods []string

	// AllowHeaders lists request headers clients may send. When empty, the
	// preflight's Access-Control-Request-Headers value is echoed back.
	AllowHeaders []string

	// ExposeHeaders lists response headers scripts may read.
	ExposeHeaders []string

	// AllowCredentials permits cookies and auth headers on cross-origin
	// requests. The wildcard origin is invalid with credentials, so the
	// specific origin is echoed instead.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds. Zero omits the
	// header; negative sends "0".
	MaxAge int
}

// cors holds the precomputed header values shared by every request.
type cors struct {
	cfg           CORSConfig
	allowAll      bool
	allowed       map[string]string // lowercased origin -> configured spelling
	allowMethods  string
	allowHeaders  string
	exposeHeaders string
	maxAge        string
}

// CORS returns a middleware implementing Cross-Origin Resource Sharing.
// Origin matching is case-insensitive with the configured spelling echoed
// back, and Vary headers are set so shared caches never serve a response
// negotiated for one origin to another.
func CORS(cfg CORSConfig) Middleware {
	c := &cors{
		cfg:      cfg,
		allowAll: len(cfg.AllowOrigins) == 0,
		allowed:  make(map[string]string, len(cfg.AllowOrigins)),
	}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			c.allowAll = true
			break
		}
		c.allowed[strings.ToLower(o)] = o
	}
	if cfg.AllowCredentials {
		// Spec forbids "*" with credentials; match and echo instead.
		c.allowAll = false
	}

	c.allowMethods = strings.Join(cfg.AllowMethods, ", ")
	if c.allowMethods == "" {
		c.allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	c.allowHeaders = strings.Join(cfg.AllowHeaders, ", ")
	c.exposeHeaders = strings.Join(cfg.ExposeHeaders, ", ")

	switch {
	case cfg.MaxAge > 0:
		c.maxAge = strconv.Itoa(cfg.MaxAge)
	case cfg.MaxAge < 0:
		c.maxAge = "0"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Same-origin request. Still vary on Origin when responses can
			// differ per origin.
			if origin == "" {
				if !c.allowAll {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, r)
				return
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				c.preflight(w, r, origin)
				return
			}

			if !c.allowAll {
				w.Header().Add("Vary", "Origin")
			}
			if allow := c.resolveOrigin(origin); allow != "" {
				w.Header().Set("Access-Control-Allow-Origin", allow)
				if c.cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				if c.exposeHeaders != "" {
					w.Header().Set("Access-Control-Expose-Headers", c.exposeHeaders)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// preflight answers an OPTIONS probe without invoking the wrapped handler.
// Disallowed origins get a bare 204 with no CORS headers.
func (c *cors) preflight(w http.ResponseWriter, r *http.Request, origin string) {
	w.Header().Add("Vary", "Origin")
	w.Header().Add("Vary", "Access-Control-Request-Method")
	w.Header().Add("Vary", "Access-Control-Request-Headers")

	allow := c.resolveOrigin(origin)
	if allow == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", allow)
	w.Header().Set("Access-Control-Allow-Methods", c.allowMethods)

	if c.allowHeaders != "" {
		w.Header().Set("Access-Control-Allow-Headers", c.allowHeaders)
	} else if rh := r.Header.Get("Access-Control-Request-Headers"); rh != "" {
		w.Header().Set("Access-Control-Allow-Headers", rh)
	}

	if c.cfg.AllowCredentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	if c.maxAge != "" {
		w.Header().Set("Access-Control-Max-Age", c.maxAge)
	}

	w.WriteHeader(http.StatusNoContent)
}

// resolveOrigin returns the Access-Control-Allow-Origin value for a request
// origin, or "" when the origin is not permitted.
func (c *cors) resolveOrigin(origin string) string {
	if c.allowAll {
		return "*"
	}
	if spelt, ok := c.allowed[strings.ToLower(origin)]; ok {
		return spelt
	}
	return ""
}
