package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/candyhaus/sweetshop/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindTarget struct {
	Email string `json:"email" binding:"required,email"`
	Count int    `json:"count" binding:"omitempty,gte=0"`
}

func bindThrough(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := gin.New()
	r.POST("/", func(ctx *gin.Context) {
		var target bindTarget
		if !handlers.BindJSON(ctx, &target) {
			return
		}
		ctx.JSON(http.StatusOK, target)
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type bindErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Details struct {
			JSON   string `json:"json"`
			Fields []struct {
				Field   string `json:"field"`
				Rule    string `json:"rule"`
				Param   string `json:"param"`
				Message string `json:"message"`
			} `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func decodeBindError(t *testing.T, w *httptest.ResponseRecorder) bindErrorBody {
	t.Helper()

	var resp bindErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestBindJSON_ValidBody(t *testing.T) {
	w := bindThrough(t, `{"email":"a@b.com","count":3}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestBindJSON_ValidationErrorsUseJSONNames(t *testing.T) {
	w := bindThrough(t, `{"email":"not-an-email"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}

	resp := decodeBindError(t, w)

	if resp.Error.Code != "invalid_request" {
		t.Fatalf("got code %q, want invalid_request", resp.Error.Code)
	}
	if len(resp.Error.Details.Fields) != 1 {
		t.Fatalf("got %d field errors, want 1: %s", len(resp.Error.Details.Fields), w.Body.String())
	}

	fe := resp.Error.Details.Fields[0]
	if fe.Field != "email" {
		t.Fatalf("field errors must carry json names, got %q", fe.Field)
	}
	if fe.Rule != "email" || fe.Message == "" {
		t.Fatalf("unexpected field error: %+v", fe)
	}
}

func TestBindJSON_RuleParamSurfaces(t *testing.T) {
	w := bindThrough(t, `{"email":"a@b.com","count":-1}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}

	resp := decodeBindError(t, w)
	fe := resp.Error.Details.Fields[0]

	if fe.Field != "count" || fe.Rule != "gte" || fe.Param != "0" {
		t.Fatalf("unexpected field error: %+v", fe)
	}
}

func TestBindJSON_SyntaxError(t *testing.T) {
	w := bindThrough(t, `{"email":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}

	resp := decodeBindError(t, w)
	if resp.Error.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("unexpected details: %s", w.Body.String())
	}
}

func TestBindJSON_TypeMismatch(t *testing.T) {
	w := bindThrough(t, `{"email":"a@b.com","count":"three"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}

	resp := decodeBindError(t, w)

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("unexpected details: %s", w.Body.String())
	}
	if len(resp.Error.Details.Fields) != 1 || resp.Error.Details.Fields[0].Field != "count" {
		t.Fatalf("type mismatch must name the offending field: %s", w.Body.String())
	}
}
