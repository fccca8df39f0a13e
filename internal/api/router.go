package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controllers groups everything the router mounts.
type Controllers struct {
	Analytics *AnalyticsController
	Items     *ItemController
	Waste     *WasteController
	WS        *WSController
}

// NewRouter builds the gin engine with logging, recovery and CORS.
func NewRouter(ctrl Controllers, corsOrigins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(log))

	// health sits before CORS so load balancers never get a preflight reply
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"status":  "ok",
			"service": "deliwaste",
		})
	})

	r.Use(RequestLogger(log))
	r.Use(CORS(corsOrigins))

	apiGroup := r.Group("/api/v1")
	{
		itemsGroup := apiGroup.Group("/items")
		{
			itemsGroup.GET("", ctrl.Items.ListItems)
			itemsGroup.POST("", ctrl.Items.CreateItem)
			itemsGroup.PUT("", ctrl.Items.UpdateItem)
		}

		wasteGroup := apiGroup.Group("/waste")
		{
			wasteGroup.POST("", ctrl.Waste.LogWaste)
			wasteGroup.GET("", ctrl.Waste.ListWaste)
			wasteGroup.GET("/export", ctrl.Waste.ExportWaste)
		}

		apiGroup.GET("/dashboard", ctrl.Analytics.GetDashboard)
		apiGroup.GET("/tomorrow-plan", ctrl.Analytics.GetTomorrowPlan)

		if ctrl.WS != nil {
			apiGroup.GET("/ws/dashboard", ctrl.WS.ServeWS)
		}
	}

	return r
}
