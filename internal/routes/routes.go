package routes

import (
	"os"
	"time"

	"loft_back_end/internal/handlers"
	"loft_back_end/internal/handlers/payement"
	"loft_back_end/internal/handlers/product"
	"loft_back_end/internal/handlers/user"
	"loft_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	frontURL := os.Getenv("FRONTEND_URL")
	if frontURL == "" {
		frontURL = "http://localhost:3000"
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// Catalogue (public)
	api.GET("/catalog", product.GetRootCategories)
	api.GET("/catalog/:slug", product.GetCategoryPage)
	api.GET("/sales", product.GetSales)
	api.GET("/brands", product.GetBrands)
	api.GET("/product/color", product.GetProductByColor)
	api.GET("/product/:slug", product.GetProduct)
	api.GET("/search", middleware.SearchRateLimit(), product.Search)
	api.POST("/products", product.CreateProduct)

	// Images
	api.POST("/images", handlers.UploadImage)
	api.GET("/images/signed", handlers.SignedImageURL)

	// Géographie du formulaire de livraison (public)
	api.GET("/regions", handlers.GetRegions)
	api.GET("/regions/:id/cities", handlers.GetCities)

	// Auth
	api.POST("/register", middleware.RegisterRateLimit(), user.CreateUser)
	api.POST("/login", middleware.LoginRateLimit(), user.Login)
	api.POST("/auth/google/token", user.GoogleTokenLogin)
	api.GET("/auth/:provider", handlers.BeginAuth)
	api.GET("/auth/:provider/callback", handlers.CallbackAuth)

	// Webhook Stripe (signé, pas de JWT)
	api.POST("/webhook/stripe", payement.StripeWebhook)

	// Espace connecté
	secured := api.Group("")
	secured.Use(middleware.AuthRequired())
	{
		secured.GET("/cart", user.GetCart)
		secured.POST("/cart/mutate", middleware.CartRateLimit(), user.MutateCart)
		secured.DELETE("/cart/line/:id", user.RemoveCartLine)
		secured.GET("/cart/ws", user.CartWebSocket)

		secured.GET("/checkout", payement.GetCheckoutSummary)
		secured.POST("/checkout", payement.SubmitCheckout)
		secured.GET("/payment/success", payement.PaymentSuccess)

		secured.GET("/orders", user.MyOrders)

		secured.GET("/favorites", user.ListFavorites)
		secured.POST("/favorites/:slug", user.ToggleFavorite)

		secured.GET("/profile", user.GetProfile)
		secured.PUT("/profile", user.UpdateProfile)
	}
}
