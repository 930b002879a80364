package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shirtso/shirtso/internal/domain"
)

type fakeProductRepo struct {
	rows    map[uint]*domain.Product
	nextID  uint
	saveErr error
}

func newFakeProductRepo(rows ...domain.Product) *fakeProductRepo {
	f := &fakeProductRepo{rows: map[uint]*domain.Product{}, nextID: 1}
	for i := range rows {
		r := rows[i]
		if r.ID == 0 {
			r.ID = f.nextID
		}
		if r.ID >= f.nextID {
			f.nextID = r.ID + 1
		}
		f.rows[r.ID] = &r
	}
	return f
}

func (f *fakeProductRepo) List(_ context.Context, _ domain.ProductFilter) ([]domain.Product, int64, error) {
	ids := make([]uint, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	out := make([]domain.Product, 0, len(ids))
	names := map[string]struct{}{}
	for _, id := range ids {
		out = append(out, *f.rows[id])
		names[f.rows[id].Name] = struct{}{}
	}
	return out, int64(len(names)), nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uint) (*domain.Product, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) FindGroup(_ context.Context, slug string) ([]domain.Product, error) {
	ids := make([]uint, 0, len(f.rows))
	for id, p := range f.rows {
		if p.Slug == slug {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.rows[id])
	}
	return out, nil
}

func (f *fakeProductRepo) Save(_ context.Context, p *domain.Product) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if p.ID == 0 {
		p.ID = f.nextID
		f.nextID++
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeProductRepo) AddImages(_ context.Context, productID uint, imgs []domain.Image) error {
	p, ok := f.rows[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Images = append(p.Images, imgs...)
	return nil
}

func (f *fakeProductRepo) RemoveImage(_ context.Context, productID uint, url string) error {
	p, ok := f.rows[productID]
	if !ok {
		return domain.ErrNotFound
	}
	kept := p.Images[:0]
	for _, im := range p.Images {
		if im.URL != url {
			kept = append(kept, im)
		}
	}
	p.Images = kept
	return nil
}

func (f *fakeProductRepo) SetPrimaryImage(_ context.Context, productID uint, url string) error {
	p, ok := f.rows[productID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range p.Images {
		p.Images[i].Primary = p.Images[i].URL == url
	}
	return nil
}

func (f *fakeProductRepo) ClearImages(_ context.Context, productID uint) ([]string, error) {
	p, ok := f.rows[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	urls := make([]string, 0, len(p.Images))
	for _, im := range p.Images {
		urls = append(urls, im.URL)
	}
	p.Images = nil
	return urls, nil
}

func (f *fakeProductRepo) UpdateStock(_ context.Context, productID uint, delta int) error {
	p, ok := f.rows[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock += delta
	if p.Stock < 0 {
		p.Stock = 0
	}
	return nil
}

func (f *fakeProductRepo) DistinctSuppliers(_ context.Context) ([]string, error) {
	set := map[string]struct{}{}
	for _, p := range f.rows {
		if p.Supplier != "" {
			set[p.Supplier] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

type fakeOrderRepo struct {
	orders  map[uuid.UUID]*domain.Order
	saveErr error
	saves   int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{}}
}

func (f *fakeOrderRepo) Save(_ context.Context, o *domain.Order) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) List(_ context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range f.orders {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, *o)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakePromoRepo struct {
	promos map[string]*domain.PromoCode
}

func newFakePromoRepo(promos ...domain.PromoCode) *fakePromoRepo {
	f := &fakePromoRepo{promos: map[string]*domain.PromoCode{}}
	for i := range promos {
		p := promos[i]
		f.promos[strings.ToUpper(p.Code)] = &p
	}
	return f
}

func (f *fakePromoRepo) FindByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	p, ok := f.promos[strings.ToUpper(code)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePromoRepo) Save(_ context.Context, p *domain.PromoCode) error {
	f.promos[strings.ToUpper(p.Code)] = p
	return nil
}

type fakeGateway struct {
	url    string
	err    error
	status string
	ref    string
}

func (f *fakeGateway) CreateCheckout(_ context.Context, o *domain.Order) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	o.PSPSessionID = "sess-" + o.ID.String()[:8]
	return f.url, nil
}

func (f *fakeGateway) PaymentInfo(_ context.Context, _ string) (string, string, error) {
	return f.status, f.ref, f.err
}
