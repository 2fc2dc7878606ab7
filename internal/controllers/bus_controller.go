package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_service/internal/models"
	"bus_service/internal/services"
)

// busInput is the request body for creating and replacing a bus.
// Any id in the body is ignored.
type busInput struct {
	BusNumber    int     `json:"bus_number" binding:"required,gt=0"`
	Name         *string `json:"name" binding:"required"`
	KmPrice      float64 `json:"km_price" binding:"required,gt=0"`
	AverageSpeed float64 `json:"average_speed" binding:"required,gt=0"`
}

func (in busInput) toModel() models.Bus {
	return models.Bus{
		BusNumber:    in.BusNumber,
		Name:         *in.Name,
		KmPrice:      in.KmPrice,
		AverageSpeed: in.AverageSpeed,
	}
}

type BusController struct {
	buses *services.BusService
}

func NewBusController(buses *services.BusService) *BusController {
	return &BusController{buses: buses}
}

// CreateBus adds a new bus to the fleet.
func (bc *BusController) CreateBus(c *gin.Context) {
	var input busInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindingError(err))
		return
	}

	bus, err := bc.buses.Create(c.Request.Context(), input.toModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bus": bus})
}

// UpdateBus replaces every field of the bus with the given id.
func (bc *BusController) UpdateBus(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var input busInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindingError(err))
		return
	}

	bus, err := bc.buses.Update(c.Request.Context(), id, input.toModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

// DeleteBus removes a bus no route uses any more.
func (bc *BusController) DeleteBus(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := bc.buses.DeleteByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bus deleted"})
}

func (bc *BusController) ListBuses(c *gin.Context) {
	buses, err := bc.buses.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buses})
}

func (bc *BusController) GetBus(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	bus, err := bc.buses.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if bus == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No bus with this id found", "missing_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

func (bc *BusController) GetBusByNumber(c *gin.Context) {
	number, err := busNumberParam(c, "number")
	if err != nil {
		respondError(c, err)
		return
	}

	bus, err := bc.buses.GetByNumber(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}
