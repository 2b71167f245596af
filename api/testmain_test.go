package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"go.uber.org/goleak"

	"github.com/naebak/naebak/api"
)

func TestMain(m *testing.M) {
	// verify no goroutine leaks across tests in this package
	defer goleak.VerifyTestMain(m)
	os.Exit(m.Run())
}

const testSecret = "test-secret"

// jsonRequest builds a request with a JSON body; body may be a raw
// string (sent as-is) or any value to marshal.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asIdentity stamps a resolved caller on the request, standing in for
// the JWT middleware.
func asIdentity(req *http.Request, accountID int64, role string) *http.Request {
	ctx := context.WithValue(req.Context(), api.CtxIdentity, &api.Identity{AccountID: accountID, Role: role})
	return req.WithContext(ctx)
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
