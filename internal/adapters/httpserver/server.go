package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/oauth2"

	"github.com/shirtso/shirtso/internal/adapters/cartstore/cookie"
	"github.com/shirtso/shirtso/internal/adapters/payments/psp"
	"github.com/shirtso/shirtso/internal/adapters/scraper"
	"github.com/shirtso/shirtso/internal/cart"
	"github.com/shirtso/shirtso/internal/catalog"
	"github.com/shirtso/shirtso/internal/domain"
	"github.com/shirtso/shirtso/internal/usecase"
)

type Server struct {
	mux       *http.ServeMux
	products  *usecase.ProductUC
	orders    *usecase.OrderUC
	payments  *usecase.PaymentUC
	customers domain.CustomerRepo

	guestCarts  *cookie.Store
	serverCarts cart.Store
	notifier    *cart.Notifier

	images   *scraper.ImageScraper
	ai       *openai.Client
	oauthCfg *oauth2.Config

	adminAllowed map[string]struct{}
	adminSecret  []byte
}

func New(p *usecase.ProductUC, o *usecase.OrderUC, pay *usecase.PaymentUC, customers domain.CustomerRepo, guestCarts *cookie.Store, serverCarts cart.Store, notifier *cart.Notifier, oauthCfg *oauth2.Config) http.Handler {
	s := &Server{
		mux:         http.NewServeMux(),
		products:    p,
		orders:      o,
		payments:    pay,
		customers:   customers,
		guestCarts:  guestCarts,
		serverCarts: serverCarts,
		notifier:    notifier,
		images:      scraper.NewImageScraper(),
		oauthCfg:    oauthCfg,
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		s.ai = openai.NewClient(key)
	}

	allowed := map[string]struct{}{}
	if raw := os.Getenv("ADMIN_ALLOWED_EMAILS"); raw != "" {
		for _, e := range strings.Split(raw, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				allowed[e] = struct{}{}
			}
		}
	}
	s.adminAllowed = allowed
	sec := os.Getenv("ADMIN_SECRET")
	if sec == "" {
		sec = os.Getenv("SECRET_KEY")
	}
	if sec == "" {
		sec = "dev-admin-secret"
	}
	s.adminSecret = []byte(sec)

	// a cart-count badge would subscribe here over SSE or a websocket; the
	// audit subscriber keeps server-side visibility of the same channel
	notifier.Subscribe(func() {
		log.Debug().Msg("cart changed")
	})

	s.routes()
	return Chain(s.mux,
		PublicRateLimit(map[string]int{
			"/api/checkout": 10,
			"/webhooks/psp": 30,
		}),
		RateLimit(120),
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/products", s.apiProducts)
	s.mux.HandleFunc("/api/products/", s.apiProductBySlug)
	s.mux.HandleFunc("/api/sizes", s.apiSizes)
	s.mux.HandleFunc("/api/suppliers", s.apiSuppliers)
	s.mux.HandleFunc("/api/shipping-methods", s.apiShippingMethods)

	s.mux.HandleFunc("/api/cart", s.handleCart)
	s.mux.HandleFunc("/api/cart/update", s.handleCartUpdate)
	s.mux.HandleFunc("/api/cart/remove", s.handleCartRemove)
	s.mux.HandleFunc("/api/cart/clear", s.handleCartClear)

	s.mux.HandleFunc("/api/checkout", s.apiCheckout)
	s.mux.HandleFunc("/api/orders/", s.apiOrderTrack)
	s.mux.HandleFunc("/pay/", s.handlePayReturn)
	s.mux.HandleFunc("/webhooks/psp", s.webhookPSP)

	s.mux.HandleFunc("/admin/auth", s.handleAdminAuth)
	s.mux.HandleFunc("/admin/logout", s.handleAdminLogout)
	s.mux.HandleFunc("/auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("/auth/google/callback", s.handleGoogleCallback)

	s.mux.HandleFunc("/admin/api/products", s.adminProducts)
	s.mux.HandleFunc("/admin/api/products/", s.adminProductByID)
	s.mux.HandleFunc("/admin/api/groups/", s.adminGroupOps)
	s.mux.HandleFunc("/admin/api/export", s.adminExportXLSX)
	s.mux.HandleFunc("/admin/api/import", s.adminImportXLSX)
	s.mux.HandleFunc("/admin/api/orders", s.adminOrders)

	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"status": "ok"})
	})
}

// --- storefront ---

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	f := domain.ProductFilter{
		Query:    q.Get("q"),
		Supplier: q.Get("supplier"),
		Size:     q.Get("size"),
		InStock:  q.Get("in_stock") == "1" || q.Get("in_stock") == "true",
		Sort:     q.Get("sort"),
		Page:     page,
		PageSize: pageSize,
	}
	groups, total, err := s.products.ListGrouped(r.Context(), f)
	if err != nil {
		log.Error().Err(err).Msg("list products")
		http.Error(w, "list", 500)
		return
	}
	out := make([]map[string]any, 0, len(groups))
	for i := range groups {
		out = append(out, groupView(&groups[i], ""))
	}
	writeJSON(w, 200, map[string]any{"products": out, "total": total})
}

func (s *Server) apiProductBySlug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	slug := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if slug == "" || strings.Contains(slug, "/") {
		http.NotFound(w, r)
		return
	}
	size := r.URL.Query().Get("size")
	g, v, err := s.products.ResolveVariant(r.Context(), slug, size)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("product detail")
		http.Error(w, "detail", 500)
		return
	}
	view := groupView(g, size)
	if v != nil {
		view["selectedVariant"] = v
	}
	writeJSON(w, 200, view)
}

// groupView serializes a grouped product plus its default selection, so the
// size chips can come up with the right variant already active.
func groupView(g *catalog.GroupedProduct, selectedSize string) map[string]any {
	view := map[string]any{
		"slug":           g.Slug,
		"productName":    g.Name,
		"description":    g.Description,
		"price":          g.Price,
		"currency":       g.Currency,
		"supplier":       g.Supplier,
		"sizeVariants":   g.SizeVariants,
		"availableSizes": g.AvailableSizes,
		"totalStock":     g.TotalStock,
		"images":         g.Images,
	}
	if selectedSize == "" {
		if dv := catalog.DefaultVariant(g); dv != nil {
			view["defaultVariant"] = dv
		}
	}
	return view
}

func (s *Server) apiSizes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{"sizes": catalog.CanonicalSizes})
}

func (s *Server) apiSuppliers(w http.ResponseWriter, r *http.Request) {
	list, err := s.products.Suppliers(r.Context())
	if err != nil {
		http.Error(w, "suppliers", 500)
		return
	}
	writeJSON(w, 200, map[string]any{"suppliers": list})
}

func (s *Server) apiShippingMethods(w http.ResponseWriter, r *http.Request) {
	methods := []map[string]any{}
	for _, m := range usecase.ShippingMethods() {
		cost, _ := usecase.ShippingCostFor(m)
		methods = append(methods, map[string]any{"method": m, "cost": cost})
	}
	writeJSON(w, 200, map[string]any{"methods": methods})
}

// --- cart ---

const cartIDCookie = "cart_id"

// cartID returns the server cart key for this browser, minting one on first
// mutation. The same id keys the Redis copy the syncer pushes to.
func (s *Server) cartID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cartIDCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: cartIDCookie, Value: id, Path: "/", MaxAge: 60 * 60 * 24 * 30, HttpOnly: true})
	return id
}

// persistCart writes the cookie snapshot and, when a server store is wired,
// pushes the same cart through the syncer. Cookie persistence is
// fire-and-forget; a failed server push is logged by the syncer and the
// session carries on with the local copy.
func (s *Server) persistCart(w http.ResponseWriter, r *http.Request, c cart.Cart) {
	s.guestCarts.Save(w, c)
	if s.serverCarts == nil {
		return
	}
	syncer := cart.NewSyncer(s.serverCarts, s.cartID(w, r), s.notifier)
	_ = syncer.Push(r.Context(), &c)
}

func (s *Server) cartResponse(c *cart.Cart) map[string]any {
	return map[string]any{
		"lines":      c.Lines,
		"totalItems": c.TotalItems(),
		"totalPrice": c.TotalPrice(),
	}
}

type addToCartReq struct {
	Slug string `json:"slug"`
	Size string `json:"size"`
	Qty  int    `json:"qty"`
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c := s.guestCarts.Load(r)
		writeJSON(w, 200, s.cartResponse(&c))
	case http.MethodPost:
		var req addToCartReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slug == "" {
			http.Error(w, "body", 400)
			return
		}
		g, v, err := s.products.ResolveVariant(r.Context(), req.Slug, req.Size)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "product", 404)
				return
			}
			http.Error(w, "product", 500)
			return
		}
		if v == nil || v.Stock <= 0 {
			writeJSON(w, 409, map[string]any{"error": "out of stock"})
			return
		}
		qty := catalog.ClampQuantity(req.Qty, v.Stock)
		c := s.guestCarts.Load(r)
		c.Add(cart.Line{
			ProductID: v.ProductID,
			Size:      v.Size,
			Name:      g.Name,
			Price:     v.Price,
			Currency:  g.Currency,
			Qty:       qty,
		})
		s.persistCart(w, r, c)
		writeJSON(w, 200, s.cartResponse(&c))
	default:
		http.Error(w, "method", 405)
	}
}

type cartLineReq struct {
	ProductID uint   `json:"productId"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req cartLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == 0 {
		http.Error(w, "body", 400)
		return
	}
	c := s.guestCarts.Load(r)
	c.UpdateQuantity(req.ProductID, req.Size, req.Qty)
	s.persistCart(w, r, c)
	writeJSON(w, 200, s.cartResponse(&c))
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req cartLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == 0 {
		http.Error(w, "body", 400)
		return
	}
	c := s.guestCarts.Load(r)
	c.Remove(req.ProductID, req.Size)
	s.persistCart(w, r, c)
	writeJSON(w, 200, s.cartResponse(&c))
}

func (s *Server) handleCartClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	c := s.guestCarts.Load(r)
	c.Clear()
	s.persistCart(w, r, c)
	writeJSON(w, 200, s.cartResponse(&c))
}

// --- checkout & orders ---

type checkoutReq struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	PostalCode     string `json:"postalCode"`
	Country        string `json:"country"`
	ShippingMethod string `json:"shippingMethod"`
	PromoCode      string `json:"promoCode"`
}

func (s *Server) apiCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "body", 400)
		return
	}
	c := s.guestCarts.Load(r)
	if c.IsEmpty() {
		writeJSON(w, 400, map[string]any{"error": "empty cart"})
		return
	}
	o, err := s.orders.Checkout(r.Context(), usecase.CheckoutInput{
		Email:          req.Email,
		Name:           req.Name,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		PostalCode:     req.PostalCode,
		Country:        req.Country,
		ShippingMethod: req.ShippingMethod,
		PromoCode:      req.PromoCode,
	}, &c)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOutOfStock), errors.Is(err, domain.ErrInvalidQty), errors.Is(err, domain.ErrInvalidCode):
			writeJSON(w, 409, map[string]any{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("checkout")
			writeJSON(w, 400, map[string]any{"error": err.Error()})
		}
		return
	}

	s.upsertCustomer(r, o)

	redirURL, err := s.payments.CreateCheckout(r.Context(), o)
	if err != nil {
		log.Error().Err(err).Str("order", o.ID.String()).Msg("psp checkout")
		redirURL = "/pay/" + o.ID.String()
	}

	// order placed: drop both cart copies
	c.Clear()
	s.guestCarts.Save(w, c)
	if s.serverCarts != nil {
		if err := s.serverCarts.Clear(r.Context(), s.cartID(w, r)); err == nil {
			s.notifier.Emit()
		}
	}
	writeJSON(w, 201, map[string]any{"orderId": o.ID.String(), "redirectUrl": redirURL, "total": o.Total})
}

func (s *Server) upsertCustomer(r *http.Request, o *domain.Order) {
	cust, err := s.customers.FindByEmail(r.Context(), o.Email)
	if errors.Is(err, domain.ErrNotFound) {
		cust = &domain.Customer{ID: uuid.New(), Email: o.Email, Name: o.Name, Phone: o.Phone}
	} else if err != nil {
		log.Error().Err(err).Msg("find customer")
		return
	}
	if c, err2 := r.Cookie(cartIDCookie); err2 == nil {
		cust.CartID = c.Value
	}
	if err := s.customers.Save(r.Context(), cust); err != nil {
		log.Error().Err(err).Msg("save customer")
		return
	}
	o.CustomerID = &cust.ID
}

func (s *Server) apiOrderTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	uid, err := uuid.Parse(idStr)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	o, err := s.orders.Track(r.Context(), uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "order", 500)
		return
	}
	writeJSON(w, 200, orderView(o))
}

func orderView(o *domain.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"productId": it.ProductID,
			"name":      it.Name,
			"size":      it.Size,
			"qty":       it.Qty,
			"unitPrice": it.UnitPrice,
		})
	}
	return map[string]any{
		"orderId":        o.ID.String(),
		"status":         o.Status,
		"items":          items,
		"subtotal":       o.Subtotal,
		"shippingMethod": o.ShippingMethod,
		"shippingCost":   o.ShippingCost,
		"discount":       o.DiscountAmount,
		"total":          o.Total,
		"currency":       o.Currency,
		"createdAt":      o.CreatedAt,
	}
}

// --- payments ---

// handlePayReturn is the PSP back URL: the buyer lands here after the hosted
// payment page with the result in the query string.
func (s *Server) handlePayReturn(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/pay/")
	uid, err := uuid.Parse(idStr)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	status := strings.ToLower(r.URL.Query().Get("status"))
	o, err := s.payments.ApplyPaymentStatus(r.Context(), uid, status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error().Err(err).Str("order", idStr).Msg("apply payment status")
		http.Error(w, "payment", 500)
		return
	}
	if o.Status == domain.OrderStatusPaid && !o.Notified {
		o.Notified = true
		_ = s.orders.Orders.Save(r.Context(), o)
		go sendOrderEmail(o, true)
	}
	writeJSON(w, 200, orderView(o))
}

type pspWebhook struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (s *Server) webhookPSP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var evt pspWebhook
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		http.Error(w, "body", 400)
		return
	}
	if evt.Type != "payment" || evt.Data.ID == "" {
		w.WriteHeader(200)
		return
	}
	status, extRef, err := s.payments.Gateway.PaymentInfo(r.Context(), evt.Data.ID)
	if err != nil {
		log.Error().Err(err).Str("payment", evt.Data.ID).Msg("psp payment info")
		http.Error(w, "psp", 502)
		return
	}
	orderID, ok := verifyExternalRef(extRef)
	if !ok {
		log.Warn().Str("ref", extRef).Msg("webhook with bad external ref")
		w.WriteHeader(200)
		return
	}
	uid, err := uuid.Parse(orderID)
	if err != nil {
		w.WriteHeader(200)
		return
	}
	o, err := s.payments.ApplyPaymentStatus(r.Context(), uid, status)
	if err != nil {
		log.Error().Err(err).Str("order", orderID).Msg("apply webhook status")
		http.Error(w, "order", 500)
		return
	}
	if o.Status == domain.OrderStatusPaid && !o.Notified {
		o.Notified = true
		_ = s.orders.Orders.Save(r.Context(), o)
		go sendOrderEmail(o, true)
	}
	w.WriteHeader(200)
}

func verifyExternalRef(ext string) (string, bool) { return psp.VerifyExternalRef(ext) }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
