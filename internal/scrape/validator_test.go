package scrape

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseURL(t *testing.T) {
	t.Parallel()

	valid := []string{"http://example.com", "https://shop.example.com/p/1?ref=x"}
	for _, u := range valid {
		if _, err := ParseURL(u); err != nil {
			t.Errorf("%q: unexpected error %v", u, err)
		}
	}

	invalid := []string{"", "example.com", "ftp://example.com", "https://", "http://%zz"}
	for _, u := range invalid {
		if _, err := ParseURL(u); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("%q: expected ErrInvalidURL, got %v", u, err)
		}
	}
}

func TestValidatorValidate(t *testing.T) {
	t.Parallel()

	t.Run("reachable URL", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodHead {
				t.Errorf("expected HEAD, got %s", r.Method)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		if err := NewValidator(0).Validate(t.Context(), srv.URL); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("no content below 400 is reachable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		if err := NewValidator(0).Validate(t.Context(), srv.URL); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("status 404 is unreachable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		err := NewValidator(0).Validate(t.Context(), srv.URL)
		if !errors.Is(err, ErrURLUnreachable) {
			t.Fatalf("expected ErrURLUnreachable, got %v", err)
		}
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
			t.Errorf("expected wrapped 404 StatusError, got %v", err)
		}
	})

	t.Run("closed server is unreachable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		target := srv.URL
		srv.Close()

		if err := NewValidator(0).Validate(t.Context(), target); !errors.Is(err, ErrURLUnreachable) {
			t.Errorf("expected ErrURLUnreachable, got %v", err)
		}
	})

	t.Run("malformed URL", func(t *testing.T) {
		t.Parallel()

		if err := NewValidator(0).Validate(t.Context(), "not a url"); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})
}
