package inventory

import (
	"strings"
	"time"

	"procurement-backend/internal/auth"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CreateProductRequest struct {
	Name            string          `json:"name" validate:"required,max=150"`
	SKU             string          `json:"sku" validate:"required,max=60"`
	Category        string          `json:"category" validate:"max=80"`
	Description     string          `json:"description"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	QuantityInStock int64           `json:"quantity_in_stock" validate:"gte=0"`
	ReorderLevel    int64           `json:"reorder_level" validate:"gte=0"`
}

// AdjustStockRequest sends either the counted quantity or a signed delta.
type AdjustStockRequest struct {
	Quantity *int64 `json:"quantity" validate:"omitempty,gte=0"`
	Delta    *int64 `json:"delta"`
	Note     string `json:"note" validate:"max=255"`
}

type ProductResponse struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	QuantityInStock int64           `json:"quantity_in_stock"`
	ReorderLevel    int64           `json:"reorder_level"`
	LowStock        bool            `json:"low_stock"`
	UpdatedAt       string          `json:"updated_at"`
}

func ToResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		SKU:             p.SKU,
		Category:        p.Category,
		Description:     p.Description,
		UnitPrice:       p.UnitPrice,
		QuantityInStock: p.QuantityInStock,
		ReorderLevel:    p.ReorderLevel,
		LowStock:        p.IsLowStock(),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}

type Handler struct {
	svc    *Service
	logger *logrus.Logger
}

func NewHandler(svc *Service, logger *logrus.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// GET /api/products?low_stock=true&category=cables
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := h.svc.List(c.UserContext(), repository.ProductFilter{
			LowStock: c.QueryBool("low_stock", false),
			Category: c.Query("category"),
		})
		if err != nil {
			return httpx.Fail(h.logger, "inventory", "List", err, "Could not list products")
		}

		resp := make([]ProductResponse, 0, len(products))
		for i := range products {
			resp = append(resp, ToResponse(&products[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/products/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		p, err := h.svc.Get(c.UserContext(), id)
		if err != nil {
			return httpx.Fail(h.logger, "inventory", "Get", err, "Could not load product")
		}
		return c.JSON(ToResponse(p))
	}
}

// POST /api/products
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		var body CreateProductRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		p, err := h.svc.Create(c.UserContext(), user.Actor(), CreateInput{
			Name:            body.Name,
			SKU:             body.SKU,
			Category:        body.Category,
			Description:     body.Description,
			UnitPrice:       body.UnitPrice,
			QuantityInStock: body.QuantityInStock,
			ReorderLevel:    body.ReorderLevel,
		})
		if err != nil {
			return httpx.Fail(h.logger, "inventory", "Create", err, "Could not create product")
		}
		return c.Status(fiber.StatusCreated).JSON(ToResponse(p))
	}
}

// PATCH /api/products/:id/stock
func (h *Handler) AdjustStock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body AdjustStockRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		p, err := h.svc.AdjustStock(c.UserContext(), user.Actor(), id, StockChange{
			Quantity: body.Quantity,
			Delta:    body.Delta,
			Note:     body.Note,
		})
		if err != nil {
			return httpx.Fail(h.logger, "inventory", "AdjustStock", err, "Could not update stock")
		}
		return c.JSON(ToResponse(p))
	}
}

// POST /api/products/import (multipart, field "file")
func (h *Handler) Import() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "A file field is required")
		}
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files can be imported")
		}
		file, err := fh.Open()
		if err != nil {
			return httpx.Fail(h.logger, "inventory", "Import", err, "Could not open upload")
		}
		defer file.Close()

		res, err := h.svc.ImportXLSX(c.UserContext(), user.Actor(), file)
		if err != nil {
			return httpx.Fail(h.logger, "inventory", "Import", err, "Could not import products")
		}
		return c.JSON(res)
	}
}
