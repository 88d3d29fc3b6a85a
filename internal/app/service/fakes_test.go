package service

import (
	"context"

	"github.com/ikkim/storefront/pkg/storefrontapi"
)

// fakeAPI records calls and returns canned answers.
type fakeAPI struct {
	products     []storefrontapi.Product
	featured     []storefrontapi.Product
	settings     *storefrontapi.SiteSettings
	testimonials []storefrontapi.Testimonial
	profile      *storefrontapi.AdminProfile
	stats        *storefrontapi.DashboardStats
	contactResp  *storefrontapi.ContactResponse

	err        error // returned by every call when set
	listErr    error
	statsErr   error
	profileErr error

	calls     map[string]int
	lastLogin [2]string
	created   []storefrontapi.NewProduct
	deleted   []string
	contacts  []storefrontapi.ContactRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int)}
}

func (f *fakeAPI) ListProducts(_ context.Context, _ storefrontapi.Filter) ([]storefrontapi.Product, error) {
	f.calls["ListProducts"]++
	if f.err != nil {
		return nil, f.err
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.products, nil
}

func (f *fakeAPI) FeaturedProducts(_ context.Context) ([]storefrontapi.Product, error) {
	f.calls["FeaturedProducts"]++
	if f.err != nil {
		return nil, f.err
	}
	return f.featured, nil
}

func (f *fakeAPI) SiteSettings(_ context.Context) (*storefrontapi.SiteSettings, error) {
	f.calls["SiteSettings"]++
	if f.err != nil {
		return nil, f.err
	}
	return f.settings, nil
}

func (f *fakeAPI) Testimonials(_ context.Context) ([]storefrontapi.Testimonial, error) {
	f.calls["Testimonials"]++
	if f.err != nil {
		return nil, f.err
	}
	return f.testimonials, nil
}

func (f *fakeAPI) Login(_ context.Context, username, password string) error {
	f.calls["Login"]++
	f.lastLogin = [2]string{username, password}
	return f.err
}

func (f *fakeAPI) Profile(_ context.Context) (*storefrontapi.AdminProfile, error) {
	f.calls["Profile"]++
	if f.err != nil {
		return nil, f.err
	}
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeAPI) CreateProduct(_ context.Context, p storefrontapi.NewProduct) (*storefrontapi.Product, error) {
	f.calls["CreateProduct"]++
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, p)
	return &storefrontapi.Product{ID: "new-id", Name: p.Name}, nil
}

func (f *fakeAPI) DeleteProduct(_ context.Context, id string) error {
	f.calls["DeleteProduct"]++
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) DashboardStats(_ context.Context) (*storefrontapi.DashboardStats, error) {
	f.calls["DashboardStats"]++
	if f.err != nil {
		return nil, f.err
	}
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeAPI) SubmitContact(_ context.Context, req storefrontapi.ContactRequest) (*storefrontapi.ContactResponse, error) {
	f.calls["SubmitContact"]++
	if f.err != nil {
		return nil, f.err
	}
	f.contacts = append(f.contacts, req)
	if f.contactResp != nil {
		return f.contactResp, nil
	}
	return &storefrontapi.ContactResponse{}, nil
}
