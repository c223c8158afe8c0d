package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/landledger/property-transfer/internal/core/domain"
	"github.com/landledger/property-transfer/internal/core/ports"
)

// RequestHandler exposes the property-request lifecycle over HTTP.
type RequestHandler struct {
	service ports.RequestService
	blobs   ports.BlobStore
}

func NewRequestHandler(service ports.RequestService, blobs ports.BlobStore) *RequestHandler {
	return &RequestHandler{service: service, blobs: blobs}
}

type requestsResponse struct {
	Requests []domain.PropertyRequest `json:"requests"`
}

type requestResponse struct {
	Message string                  `json:"message"`
	Request *domain.PropertyRequest `json:"request"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// Create handles the multipart creation form. The ownership document is
// stored first; every later validation failure deletes it again inside the
// service, so no orphaned upload survives.
//
// @Summary      Create a property transfer request
// @Tags         property-requests
// @Accept       mpfd
// @Produce      json
// @Param        seller_wallet_address  formData  string  true  "Seller wallet"
// @Param        buyer_wallet_address   formData  string  true  "Buyer wallet"
// @Param        full_description       formData  string  true  "Description"
// @Param        property_price         formData  string  true  "Price"
// @Param        ownership_document     formData  file    true  "Ownership document"
// @Success      201  {object}  requestResponse
// @Failure      400  {object}  map[string]string
// @Router       /property-requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	if _, err := ctxWallet(c); err != nil {
		return err
	}

	in := ports.CreateRequestInput{
		SellerWallet: c.FormValue("seller_wallet_address"),
		BuyerWallet:  c.FormValue("buyer_wallet_address"),
		Description:  c.FormValue("full_description"),
		Price:        c.FormValue("property_price"),
	}

	switch fh, err := c.FormFile("ownership_document"); {
	case err == nil:
		src, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable document upload")
		}
		ref, err := h.blobs.Save(c.Request().Context(), fh.Filename, src)
		src.Close()
		if err != nil {
			return err
		}
		in.DocumentRef = ref
	case errors.Is(err, http.ErrMissingFile):
		// The document is optional at creation time.
	default:
		// An unreadable multipart body is a client error, not a
		// request without a document.
		return echo.NewHTTPError(http.StatusBadRequest, "malformed document upload")
	}

	req, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, requestResponse{
		Message: "Property request created successfully",
		Request: req,
	})
}

// ListAll returns every request, newest first.
//
// @Summary      List all property requests
// @Tags         property-requests
// @Produce      json
// @Success      200  {object}  requestsResponse
// @Router       /property-requests [get]
func (h *RequestHandler) ListAll(c echo.Context) error {
	requests, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requestsResponse{Requests: requests})
}

// ListMine returns requests where the caller is seller or buyer.
//
// @Summary      List the caller's property requests
// @Tags         property-requests
// @Produce      json
// @Success      200  {object}  requestsResponse
// @Router       /property-requests/my [get]
func (h *RequestHandler) ListMine(c echo.Context) error {
	wallet, err := ctxWallet(c)
	if err != nil {
		return err
	}
	requests, err := h.service.ListMine(c.Request().Context(), wallet)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requestsResponse{Requests: requests})
}

// ListOwned returns approved requests where the caller is the buyer.
//
// @Summary      List properties owned by the caller
// @Tags         property-requests
// @Produce      json
// @Success      200  {object}  requestsResponse
// @Router       /property-requests/owned [get]
func (h *RequestHandler) ListOwned(c echo.Context) error {
	wallet, err := ctxWallet(c)
	if err != nil {
		return err
	}
	requests, err := h.service.ListOwned(c.Request().Context(), wallet)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requestsResponse{Requests: requests})
}

// UpdateStatus transitions a pending request to approved or rejected.
//
// @Summary      Transition a property request
// @Tags         property-requests
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Request identifier"
// @Param        body  body      transitionRequest  true  "Target status"
// @Success      200   {object}  requestResponse
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /property-requests/{id} [patch]
func (h *RequestHandler) UpdateStatus(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.service.Transition(c.Request().Context(), c.Param("id"), domain.RequestStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, requestResponse{
		Message: "Property request " + req.Status + " successfully",
		Request: updated,
	})
}
