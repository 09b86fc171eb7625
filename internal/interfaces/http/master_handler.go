package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/textile-stock-api/internal/application/masters"
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
)

// createRequest DTO de alta de una entidad maestra.
type createRequest[T any] interface {
	Validate() error
	Entity() T
	Active() *bool
}

// updateRequest DTO de actualización parcial.
type updateRequest interface {
	Validate() error
	Patch() lifecycle.Patch
}

// MasterHandler maneja la familia de rutas CRUD con borrado lógico de una entidad maestra.
type MasterHandler[T any, C createRequest[T], U updateRequest] struct {
	uc *masters.MasterUseCase[T]
}

// NewMasterHandler construye el handler para el caso de uso de la entidad.
func NewMasterHandler[T any, C createRequest[T], U updateRequest](uc *masters.MasterUseCase[T]) *MasterHandler[T, C, U] {
	return &MasterHandler[T, C, U]{uc: uc}
}

// Mount registra las rutas sobre el grupo de la entidad. Las rutas estáticas van antes de /:id.
func (h *MasterHandler[T, C, U]) Mount(r fiber.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/active", h.ListActive)
	if len(h.uc.Numeric()) > 0 {
		r.Get("/summary", h.Summary)
	}
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Delete("/:id/permanent", RequireRole(entity.RoleAdmin), h.HardDelete)
	r.Delete("/:id", h.SoftDelete)
	r.Post("/:id/restore", h.Restore)
}

// Create godoc
// @Summary      Crear registro maestro
// @Tags         masters
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        entity  path  string  true  "quality | location | khata | broker"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/masters/{entity} [post]
func (h *MasterHandler[T, C, U]) Create(c *fiber.Ctx) error {
	var in C
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := in.Validate(); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in.Entity(), in.Active(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar registros (vivos, o todos con includeDeleted)
// @Tags         masters
// @Security     Bearer
// @Produce      json
// @Param        entity          path   string  true   "quality | location | khata | broker"
// @Param        includeDeleted  query  bool    false  "Incluir borrados lógicamente"
// @Success      200  {array}  map[string]interface{}
// @Router       /api/masters/{entity} [get]
func (h *MasterHandler[T, C, U]) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.Queries(), c.QueryBool("includeDeleted", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListActive godoc
// @Summary      Listar registros vivos y activos
// @Tags         masters
// @Security     Bearer
// @Produce      json
// @Param        entity  path  string  true  "quality | location | khata | broker"
// @Success      200  {array}  map[string]interface{}
// @Router       /api/masters/{entity}/active [get]
func (h *MasterHandler[T, C, U]) ListActive(c *fiber.Ctx) error {
	out, err := h.uc.ListActive(c.UserContext(), c.Queries())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de tarifas y medidas (registros vivos y activos)
// @Tags         masters
// @Security     Bearer
// @Produce      json
// @Param        name     query  string  false  "Filtro por nombre"
// @Param        hsnCode  query  string  false  "Filtro por código HSN"
// @Success      200  {object}  dto.SummaryResponse
// @Router       /api/masters/quality/summary [get]
func (h *MasterHandler[T, C, U]) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), c.Queries())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener registro vivo por id
// @Tags         masters
// @Security     Bearer
// @Produce      json
// @Param        entity  path  string  true  "quality | location | khata | broker"
// @Param        id      path  string  true  "Identificador estable"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/masters/{entity}/{id} [get]
func (h *MasterHandler[T, C, U]) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar parcialmente un registro vivo
// @Tags         masters
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        entity  path  string  true  "quality | location | khata | broker"
// @Param        id      path  string  true  "Identificador estable"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/masters/{entity}/{id} [put]
func (h *MasterHandler[T, C, U]) Update(c *fiber.Ctx) error {
	var in U
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := in.Validate(); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in.Patch(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SoftDelete godoc
// @Summary      Borrado lógico
// @Tags         masters
// @Security     Bearer
// @Produce      json
// @Param        entity  path  string  true  "quality | location | khata | broker"
// @Param        id      path  string  true  "Identificador estable"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/masters/{entity}/{id} [delete]
func (h *MasterHandler[T, C, U]) SoftDelete(c *fiber.Ctx) error {
	out, err := h.uc.SoftDelete(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Restore godoc
// @Summary      Restaurar un registro borrado lógicamente
// @Tags         masters
// @Security     Bearer
// @Produce      json
// @Param        entity  path  string  true  "quality | location | khata | broker"
// @Param        id      path  string  true  "Identificador estable"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/masters/{entity}/{id}/restore [post]
func (h *MasterHandler[T, C, U]) Restore(c *fiber.Ctx) error {
	out, err := h.uc.Restore(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// HardDelete godoc
// @Summary      Borrado físico (solo admin)
// @Tags         masters
// @Security     Bearer
// @Param        entity  path  string  true  "quality | location | khata | broker"
// @Param        id      path  string  true  "Identificador estable"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/masters/{entity}/{id}/permanent [delete]
func (h *MasterHandler[T, C, U]) HardDelete(c *fiber.Ctx) error {
	if err := h.uc.HardDelete(c.UserContext(), c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
