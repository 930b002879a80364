package app

import (
	"net/http"
	"os"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	redisstore "github.com/shirtso/shirtso/internal/adapters/cartstore/redis"
	"github.com/shirtso/shirtso/internal/adapters/cartstore/cookie"
	"github.com/shirtso/shirtso/internal/adapters/httpserver"
	"github.com/shirtso/shirtso/internal/adapters/payments/psp"
	"github.com/shirtso/shirtso/internal/adapters/repo/postgres"
	"github.com/shirtso/shirtso/internal/cart"
	"github.com/shirtso/shirtso/internal/domain"
	"github.com/shirtso/shirtso/internal/usecase"
)

type App struct {
	DB          *gorm.DB
	ProductUC   *usecase.ProductUC
	OrderUC     *usecase.OrderUC
	PaymentUC   *usecase.PaymentUC
	Customers   domain.CustomerRepo
	GuestCarts  *cookie.Store
	ServerCarts cart.Store
	Notifier    *cart.Notifier
	OAuthConfig *oauth2.Config
}

func NewApp(db *gorm.DB, rdb *goredis.Client) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	custRepo := postgres.NewCustomerRepo(db)
	promoRepo := postgres.NewPromoRepo(db)

	token := os.Getenv("PSP_ACCESS_TOKEN")
	appEnv := strings.ToLower(os.Getenv("APP_ENV"))
	if appEnv == "production" || appEnv == "prod" {
		if prodTok := os.Getenv("PSP_PROD_ACCESS_TOKEN"); prodTok != "" {
			token = prodTok
		}
	}
	gateway := psp.NewGateway(token)

	secret := os.Getenv("SESSION_KEY")
	if secret == "" {
		secret = "dev-insecure"
	}

	notifier := cart.NewNotifier()

	var serverCarts cart.Store
	if rdb != nil {
		serverCarts = redisstore.New(rdb)
	}

	var oauthCfg *oauth2.Config
	googleID := os.Getenv("GOOGLE_CLIENT_ID")
	googleSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if googleID != "" && googleSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     googleID,
			ClientSecret: googleSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	app := &App{
		DB:          db,
		Customers:   custRepo,
		GuestCarts:  cookie.New([]byte(secret)),
		ServerCarts: serverCarts,
		Notifier:    notifier,
		OAuthConfig: oauthCfg,
	}
	app.ProductUC = usecase.NewProductUC(prodRepo)
	app.OrderUC = &usecase.OrderUC{Orders: orderRepo, Products: prodRepo, Promos: promoRepo}
	app.PaymentUC = &usecase.PaymentUC{Orders: orderRepo, Products: prodRepo, Gateway: gateway, Notifier: notifier}
	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.ProductUC, a.OrderUC, a.PaymentUC, a.Customers, a.GuestCarts, a.ServerCarts, a.Notifier, a.OAuthConfig)
}

func (a *App) MigrateAndSeed() error {
	if err := a.DB.AutoMigrate(
		&domain.Product{}, &domain.Image{}, &domain.Order{}, &domain.OrderItem{}, &domain.Customer{}, &domain.PromoCode{},
	); err != nil {
		return err
	}

	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_slug ON products(slug)").Error
	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_products_name_size ON products(name, size)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id)").Error

	if os.Getenv("SEED_DEMO_DATA") == "1" {
		seedProducts(a.DB)
		seedPromos(a.DB)
	}
	return nil
}

func seedProducts(db *gorm.DB) {
	type variant struct {
		size  string
		stock int
	}
	demo := []struct {
		name     string
		price    float64
		supplier string
		variants []variant
	}{
		{"Classic Crew Tee", 19.90, "Fruit of the Loom", []variant{{"S", 12}, {"M", 20}, {"L", 15}, {"XL", 8}}},
		{"Heavyweight Pocket Tee", 24.50, "Gildan", []variant{{"M", 10}, {"L", 0}, {"XL", 4}, {"XXL", 2}}},
		{"Slim Fit V-Neck", 21.00, "Stanley/Stella", []variant{{"XS", 5}, {"S", 9}, {"M", 14}}},
	}
	for _, d := range demo {
		slug := usecase.Slugify(d.name)
		for _, v := range d.variants {
			db.Create(&domain.Product{
				Slug: slug, Name: d.name, Price: d.price, Currency: "EUR",
				Size: v.size, Stock: v.stock, Supplier: d.supplier, Active: true,
			})
		}
	}
}

func seedPromos(db *gorm.DB) {
	for _, p := range []domain.PromoCode{
		{Code: "WELCOME10", PercentOff: 10, Active: true},
		{Code: "SUMMER20", PercentOff: 20, Active: true},
	} {
		db.Create(&p)
	}
}
