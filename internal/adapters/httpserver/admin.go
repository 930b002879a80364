package httpserver

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/shirtso/shirtso/internal/catalog"
	"github.com/shirtso/shirtso/internal/domain"
	"github.com/shirtso/shirtso/internal/usecase"
)

// --- admin auth ---

func (s *Server) issueAdminToken(email string, dur time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(dur)
	payload := fmt.Sprintf("%s|%d", email, exp.Unix())
	mac := hmac.New(sha256.New, s.adminSecret)
	mac.Write([]byte(payload))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	tok := base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + sig
	return tok, exp, nil
}

func (s *Server) verifyAdminToken(tok string) (string, error) {
	parts := strings.SplitN(tok, ".", 2)
	if len(parts) != 2 {
		return "", errors.New("malformed token")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", errors.New("malformed token")
	}
	mac := hmac.New(sha256.New, s.adminSecret)
	mac.Write(payload)
	want := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(want), []byte(parts[1])) {
		return "", errors.New("bad signature")
	}
	fields := strings.SplitN(string(payload), "|", 2)
	if len(fields) != 2 {
		return "", errors.New("malformed payload")
	}
	expUnix, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || time.Now().Unix() > expUnix {
		return "", errors.New("expired token")
	}
	return fields[0], nil
}

func (s *Server) readAdminToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	c, err := r.Cookie("admin_token")
	if err != nil || c.Value == "" {
		return ""
	}
	return c.Value
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if tok := s.readAdminToken(r); tok != "" {
		if _, err := s.verifyAdminToken(tok); err == nil {
			return true
		}
	}
	http.Error(w, "unauthorized", 401)
	return false
}

func (s *Server) setAdminCookie(w http.ResponseWriter, r *http.Request, tok string, maxAge int) {
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{Name: "admin_token", Value: tok, Path: "/", MaxAge: maxAge, HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode})
}

func (s *Server) handleAdminAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		User string `json:"user"`
		Pass string `json:"pass"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "body", 400)
		return
	}
	cfgUser := os.Getenv("ADMIN_USER")
	cfgPass := os.Getenv("ADMIN_PASS")
	if cfgUser == "" {
		cfgUser = "admin"
	}
	if cfgPass == "" {
		cfgPass = "admin123"
	}
	if req.User != cfgUser || req.Pass != cfgPass {
		http.Error(w, "credentials", 401)
		return
	}
	tok, exp, err := s.issueAdminToken(req.User+"@local", 6*time.Hour)
	if err != nil {
		http.Error(w, "token", 500)
		return
	}
	s.setAdminCookie(w, r, tok, 60*60*6)
	writeJSON(w, 200, map[string]any{"token": tok, "expiresAt": exp})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.setAdminCookie(w, r, "", -1)
	writeJSON(w, 200, map[string]any{"status": "ok"})
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth not configured", 503)
		return
	}
	http.Redirect(w, r, s.oauthCfg.AuthCodeURL("state"), 302)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth not configured", 503)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "code", 400)
		return
	}
	tok, err := s.oauthCfg.Exchange(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("oauth exchange")
		http.Error(w, "exchange", 502)
		return
	}
	client := s.oauthCfg.Client(r.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		http.Error(w, "userinfo", 502)
		return
	}
	defer resp.Body.Close()
	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		http.Error(w, "userinfo", 502)
		return
	}
	email := strings.ToLower(info.Email)
	if _, ok := s.adminAllowed[email]; !ok {
		http.Error(w, "forbidden", 403)
		return
	}
	adminTok, _, err := s.issueAdminToken(email, 6*time.Hour)
	if err != nil {
		http.Error(w, "token", 500)
		return
	}
	s.setAdminCookie(w, r, adminTok, 60*60*6)
	http.Redirect(w, r, "/admin/api/products", 302)
}

// --- product administration ---

// createProductReq creates one logical product with a row per size. Image
// associations arrive as either "images" or "imageMappings"; both shapes
// normalize into the same canonical set before the fan-out.
type createProductReq struct {
	Name        string             `json:"productName"`
	Description string             `json:"description"`
	Price       float64            `json:"price"`
	Currency    string             `json:"currency"`
	Supplier    string             `json:"supplier"`
	Sizes       []sizeStockReq     `json:"sizes"`
	Images      []catalog.ImageRef `json:"images"`
	Mappings    []catalog.ImageRef `json:"imageMappings"`
}

type sizeStockReq struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

func (s *Server) adminProducts(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		groups, total, err := s.products.ListGrouped(r.Context(), domain.ProductFilter{Page: page, PageSize: 50})
		if err != nil {
			http.Error(w, "list", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"products": groups, "total": total})
	case http.MethodPost:
		var req createProductReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "body", 400)
			return
		}
		if strings.TrimSpace(req.Name) == "" || req.Price < 0 || len(req.Sizes) == 0 {
			http.Error(w, "fields", 400)
			return
		}
		slug := usecase.Slugify(req.Name)
		created := []uint{}
		for _, sz := range req.Sizes {
			p := &domain.Product{
				Slug:        slug,
				Name:        req.Name,
				Description: req.Description,
				Price:       req.Price,
				Currency:    req.Currency,
				Size:        sz.Size,
				Stock:       sz.Stock,
				Supplier:    req.Supplier,
				Active:      true,
			}
			if err := s.products.Create(r.Context(), p); err != nil {
				log.Error().Err(err).Str("name", req.Name).Msg("create product")
				http.Error(w, "create", 500)
				return
			}
			created = append(created, p.ID)
		}
		imgs := catalog.NormalizeImages(catalog.ImagePayload{Images: req.Images, ImageMappings: req.Mappings})
		if len(imgs) > 0 {
			if err := s.products.AttachImages(r.Context(), slug, imgs); err != nil {
				log.Error().Err(err).Str("slug", slug).Msg("attach images")
			}
		}
		writeJSON(w, 201, map[string]any{"slug": slug, "productIds": created})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) adminProductByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/admin/api/products/")
	id64, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	id := uint(id64)
	switch r.Method {
	case http.MethodPut:
		var req struct {
			Description *string  `json:"description"`
			Price       *float64 `json:"price"`
			Stock       *int     `json:"stock"`
			Active      *bool    `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "body", 400)
			return
		}
		p, err := s.products.Products.FindByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "find", 500)
			return
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.Stock != nil {
			p.Stock = *req.Stock
		}
		if req.Active != nil {
			p.Active = *req.Active
		}
		if err := s.products.Update(r.Context(), p); err != nil {
			http.Error(w, "update", 500)
			return
		}
		writeJSON(w, 200, p)
	case http.MethodDelete:
		if err := s.products.Delete(r.Context(), id); err != nil {
			http.Error(w, "delete", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"status": "deleted"})
	default:
		http.Error(w, "method", 405)
	}
}

// adminGroupOps handles image and content operations addressed to the
// grouped product: /admin/api/groups/{slug}/{op}. Image operations fan out
// to every sibling variant inside ProductUC.
func (s *Server) adminGroupOps(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/admin/api/groups/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	slug, op := parts[0], parts[1]
	switch op {
	case "images":
		s.adminGroupImages(w, r, slug)
	case "images/primary":
		s.adminGroupPrimaryImage(w, r, slug)
	case "images/scrape":
		s.adminGroupScrapeImages(w, r, slug)
	case "describe":
		s.adminGroupDescribe(w, r, slug)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) adminGroupImages(w http.ResponseWriter, r *http.Request, slug string) {
	switch r.Method {
	case http.MethodPost:
		var payload catalog.ImagePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "body", 400)
			return
		}
		imgs := catalog.NormalizeImages(payload)
		if len(imgs) == 0 {
			http.Error(w, "images", 400)
			return
		}
		if err := s.products.AttachImages(r.Context(), slug, imgs); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "attach", 500)
			return
		}
		writeJSON(w, 201, map[string]any{"added": len(imgs)})
	case http.MethodDelete:
		url := r.URL.Query().Get("url")
		if url == "" {
			http.Error(w, "url", 400)
			return
		}
		if err := s.products.RemoveImage(r.Context(), slug, url); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "remove", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"status": "removed"})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) adminGroupPrimaryImage(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodPut {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		http.Error(w, "body", 400)
		return
	}
	if err := s.products.SetPrimaryImage(r.Context(), slug, req.URL); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "primary", 500)
		return
	}
	writeJSON(w, 200, map[string]any{"status": "ok"})
}

// adminGroupScrapeImages pulls candidate images from a supplier page and
// attaches them to the whole group.
func (s *Server) adminGroupScrapeImages(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		URL string `json:"url"`
		Max int    `json:"max"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		http.Error(w, "body", 400)
		return
	}
	urls, err := s.images.FetchImages(r.Context(), req.URL, req.Max)
	if err != nil {
		log.Warn().Err(err).Str("url", req.URL).Msg("scrape supplier images")
		writeJSON(w, 502, map[string]any{"error": "scrape failed"})
		return
	}
	imgs := make([]domain.Image, 0, len(urls))
	for _, u := range urls {
		imgs = append(imgs, domain.Image{URL: u})
	}
	if err := s.products.AttachImages(r.Context(), slug, imgs); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "attach", 500)
		return
	}
	writeJSON(w, 201, map[string]any{"added": len(imgs), "urls": urls})
}

// adminGroupDescribe generates a product description from the group's name
// and supplier and writes it onto every sibling row.
func (s *Server) adminGroupDescribe(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if s.ai == nil {
		http.Error(w, "openai not configured", 503)
		return
	}
	g, err := s.products.GetGroup(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "group", 500)
		return
	}
	desc, err := s.generateDescription(r.Context(), g)
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("generate description")
		writeJSON(w, 502, map[string]any{"error": "openai_error"})
		return
	}
	rows, err := s.products.Products.FindGroup(r.Context(), slug)
	if err != nil {
		http.Error(w, "group", 500)
		return
	}
	for i := range rows {
		rows[i].Description = desc
		if err := s.products.Update(r.Context(), &rows[i]); err != nil {
			http.Error(w, "update", 500)
			return
		}
	}
	writeJSON(w, 200, map[string]any{"description": desc})
}

func (s *Server) generateDescription(ctx context.Context, g *catalog.GroupedProduct) (string, error) {
	prompt := fmt.Sprintf(
		"Write a short, factual product description (max 60 words) for an online apparel store.\nProduct: %s\nSupplier: %s\nAvailable sizes: %s",
		g.Name, g.Supplier, strings.Join(g.AvailableSizes, ", "),
	)
	resp, err := s.ai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: 200,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (s *Server) adminOrders(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.orders.Orders.List(r.Context(), status, limit)
	if err != nil {
		http.Error(w, "orders", 500)
		return
	}
	out := make([]map[string]any, 0, len(list))
	for i := range list {
		out = append(out, orderView(&list[i]))
	}
	writeJSON(w, 200, map[string]any{"orders": out})
}
