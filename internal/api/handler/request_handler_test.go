package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/landledger/property-transfer/internal/api/middleware"
	"github.com/landledger/property-transfer/internal/core/domain"
	"github.com/landledger/property-transfer/internal/core/ports"
)

type stubRequestService struct {
	createFn     func(ctx context.Context, in ports.CreateRequestInput) (*domain.PropertyRequest, error)
	transitionFn func(ctx context.Context, requestID string, target domain.RequestStatus) (*domain.PropertyRequest, error)
	listMineFn   func(ctx context.Context, wallet string) ([]domain.PropertyRequest, error)
}

func (s *stubRequestService) Create(ctx context.Context, in ports.CreateRequestInput) (*domain.PropertyRequest, error) {
	return s.createFn(ctx, in)
}

func (s *stubRequestService) Transition(ctx context.Context, requestID string, target domain.RequestStatus) (*domain.PropertyRequest, error) {
	return s.transitionFn(ctx, requestID, target)
}

func (s *stubRequestService) ListAll(_ context.Context) ([]domain.PropertyRequest, error) {
	return nil, nil
}

func (s *stubRequestService) ListMine(ctx context.Context, wallet string) ([]domain.PropertyRequest, error) {
	return s.listMineFn(ctx, wallet)
}

func (s *stubRequestService) ListOwned(_ context.Context, _ string) ([]domain.PropertyRequest, error) {
	return nil, nil
}

type memBlobStore struct {
	saved []string
}

func (b *memBlobStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	ref := "blob-" + filename
	b.saved = append(b.saved, ref)
	return ref, nil
}

func (b *memBlobStore) Delete(_ context.Context, _ string) error { return nil }

func multipartRequest(t *testing.T, fields map[string]string, filename string) (*http.Request, error) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("ownership_document", filename)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write([]byte("document body")); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, "/property-requests", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req, nil
}

func endUserContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxRole, domain.RoleEndUser)
	c.Set(middleware.CtxWallet, "0xSELLER")
	return c
}

func TestRequestHandler_Create_StoresDocumentBeforeService(t *testing.T) {
	e := echo.New()
	blobs := &memBlobStore{}
	svc := &stubRequestService{
		createFn: func(_ context.Context, in ports.CreateRequestInput) (*domain.PropertyRequest, error) {
			if in.DocumentRef != "blob-deed.pdf" {
				t.Fatalf("expected stored document reference, got %q", in.DocumentRef)
			}
			if in.SellerWallet != "0xSELLER" || in.Price != "12.5" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.PropertyRequest{RequestID: "REQ1", Status: domain.StatusPending}, nil
		},
	}
	handler := NewRequestHandler(svc, blobs)

	req, err := multipartRequest(t, map[string]string{
		"seller_wallet_address": "0xSELLER",
		"buyer_wallet_address":  "0xBUYER",
		"full_description":      "plot 7",
		"property_price":        "12.5",
	}, "deed.pdf")
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	rec := httptest.NewRecorder()

	if err := handler.Create(endUserContext(e, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if len(blobs.saved) != 1 {
		t.Fatalf("expected one stored blob, got %d", len(blobs.saved))
	}
}

func TestRequestHandler_Create_MissingDocumentReachesService(t *testing.T) {
	e := echo.New()
	svc := &stubRequestService{
		createFn: func(_ context.Context, in ports.CreateRequestInput) (*domain.PropertyRequest, error) {
			if in.DocumentRef != "" {
				t.Fatalf("expected empty document reference, got %q", in.DocumentRef)
			}
			return nil, domain.ErrMissingDocument
		},
	}
	handler := NewRequestHandler(svc, &memBlobStore{})

	req, err := multipartRequest(t, map[string]string{"property_price": "1"}, "")
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	rec := httptest.NewRecorder()

	if err := handler.Create(endUserContext(e, req, rec)); err != domain.ErrMissingDocument {
		t.Fatalf("expected ErrMissingDocument to propagate, got %v", err)
	}
}

func TestRequestHandler_Create_MalformedUploadRejected(t *testing.T) {
	e := echo.New()
	svc := &stubRequestService{
		createFn: func(_ context.Context, _ ports.CreateRequestInput) (*domain.PropertyRequest, error) {
			t.Fatal("service must not see a request with an unreadable upload")
			return nil, nil
		},
	}
	handler := NewRequestHandler(svc, &memBlobStore{})

	// A multipart content type without a boundary cannot be parsed. This
	// is a client error, not a request that simply omits the document.
	req := httptest.NewRequest(http.MethodPost, "/property-requests", strings.NewReader("not a multipart body"))
	req.Header.Set(echo.HeaderContentType, "multipart/form-data")
	rec := httptest.NewRecorder()

	hErr, ok := handler.Create(endUserContext(e, req, rec)).(*echo.HTTPError)
	if !ok || hErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed upload, got %v", hErr)
	}
}

func TestRequestHandler_Create_NoClaims(t *testing.T) {
	e := echo.New()
	handler := NewRequestHandler(&stubRequestService{}, &memBlobStore{})

	req, err := multipartRequest(t, nil, "")
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	rec := httptest.NewRecorder()

	hErr, ok := handler.Create(e.NewContext(req, rec)).(*echo.HTTPError)
	if !ok || hErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %v", hErr)
	}
}

func TestRequestHandler_ListMine_UsesWalletClaim(t *testing.T) {
	e := echo.New()
	svc := &stubRequestService{
		listMineFn: func(_ context.Context, wallet string) ([]domain.PropertyRequest, error) {
			if wallet != "0xSELLER" {
				t.Fatalf("expected wallet claim, got %q", wallet)
			}
			return []domain.PropertyRequest{{RequestID: "REQ1"}}, nil
		},
	}
	handler := NewRequestHandler(svc, &memBlobStore{})

	req := httptest.NewRequest(http.MethodGet, "/property-requests/my", nil)
	rec := httptest.NewRecorder()

	if err := handler.ListMine(endUserContext(e, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequestHandler_UpdateStatus(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	svc := &stubRequestService{
		transitionFn: func(_ context.Context, requestID string, target domain.RequestStatus) (*domain.PropertyRequest, error) {
			if requestID != "REQ1" || target != domain.StatusApproved {
				t.Fatalf("unexpected transition: %s -> %s", requestID, target)
			}
			return &domain.PropertyRequest{RequestID: requestID, Status: target}, nil
		},
	}
	handler := NewRequestHandler(svc, &memBlobStore{})

	req := httptest.NewRequest(http.MethodPatch, "/property-requests/REQ1", strings.NewReader(`{"status":"approved"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("REQ1")

	if err := handler.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequestHandler_UpdateStatus_RejectsUnknownTarget(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	handler := NewRequestHandler(&stubRequestService{}, &memBlobStore{})

	req := httptest.NewRequest(http.MethodPatch, "/property-requests/REQ1", strings.NewReader(`{"status":"archived"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("REQ1")

	hErr, ok := handler.UpdateStatus(c).(*echo.HTTPError)
	if !ok || hErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown target, got %v", hErr)
	}
}
