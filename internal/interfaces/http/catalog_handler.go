package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/textile-stock-api/internal/application/masters"
)

// CatalogHandler sirve el catálogo PDF de calidades.
type CatalogHandler struct {
	catalog *masters.QualityCatalog
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(catalog *masters.QualityCatalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// QualityCatalog godoc
// @Summary      Catálogo PDF de calidades activas
// @Tags         masters
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/masters/quality/catalog.pdf [get]
func (h *CatalogHandler) QualityCatalog(c *fiber.Ctx) error {
	pdf, err := h.catalog.Generate(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="catalogo-calidades.pdf"`)
	return c.Send(pdf)
}
