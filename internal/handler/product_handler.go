package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/service"
	"go.uber.org/zap"
)

type ProductHandler struct {
	svc    service.ProductService
	logger *zap.Logger
}

func NewProductHandler(svc service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, logger: logger}
}

type ProductResponse struct {
	ID               uint64    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Brand            string    `json:"brand,omitempty"`
	Category         string    `json:"category,omitempty"`
	Price            uint      `json:"price"`
	StockQuantity    int       `json:"stockQuantity"`
	ProductAvailable bool      `json:"productAvailable"`
	ImageURL         *string   `json:"imageUrl"`
	SellerID         uint64    `json:"sellerId"`
	CreatedAt        time.Time `json:"createdAt"`
}

type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int64             `json:"total"`
}

type CreateProductRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Brand         string  `json:"brand"`
	Category      string  `json:"category"`
	Price         uint    `json:"price"`
	StockQuantity int     `json:"stockQuantity"`
	ImageURL      *string `json:"imageUrl"`
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Brand:            p.Brand,
		Category:         p.Category,
		Price:            p.Price,
		StockQuantity:    p.StockQuantity,
		ProductAvailable: p.ProductAvailable,
		ImageURL:         p.ImageURL,
		SellerID:         p.SellerID,
		CreatedAt:        p.CreatedAt,
	}
}

func toProductResponses(list []model.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for i := range list {
		out = append(out, toProductResponse(&list[i]))
	}
	return out
}

func (h *ProductHandler) Create(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := h.svc.Create(c.Request().Context(), u.ID, service.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Brand:         req.Brand,
		Category:      req.Category,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	list, total, err := h.svc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, ProductListResponse{Items: toProductResponses(list), Total: total})
}

func (h *ProductHandler) ListMine(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.svc.ListBySeller(c.Request().Context(), u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toProductResponses(list))
}

func (h *ProductHandler) UploadImage(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "unreadable file")
	}
	defer f.Close()

	url, err := h.svc.UploadImage(c.Request().Context(), u.ID, fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"url": url})
}
