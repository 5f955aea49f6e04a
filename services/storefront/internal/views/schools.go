package views

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

type SchoolListView struct {
	Status
	Query   string          `json:"query,omitempty"`
	Schools []domain.School `json:"schools"`

	all  []domain.School
	sess *session.Session
}

func NewSchoolList(sess *session.Session) *SchoolListView {
	return &SchoolListView{sess: sess, Schools: []domain.School{}}
}

func (v *SchoolListView) Load(ctx context.Context) {
	defer v.begin()()
	schools, err := v.sess.API().Schools.List(ctx)
	if err != nil {
		v.fail(ctx, v.sess, "load schools", err, "Failed to load schools")
		return
	}
	v.all = schools
	v.Search(v.Query)
}

// Search narrows the loaded schools without another fetch.
func (v *SchoolListView) Search(query string) {
	v.Query = query
	v.Schools = FilterSchools(v.all, query)
}

type SchoolDetailsView struct {
	Status
	School *domain.School       `json:"school"`
	Gender GenderFilter         `json:"gender"`
	Specs  []domain.UniformSpec `json:"specs"`

	catalog []domain.UniformSpec
	sess    *session.Session
}

func NewSchoolDetails(sess *session.Session) *SchoolDetailsView {
	return &SchoolDetailsView{sess: sess, Gender: FilterAll, Specs: []domain.UniformSpec{}}
}

// Load fetches the school and its catalog together. If either fails neither is shown.
func (v *SchoolDetailsView) Load(ctx context.Context, schoolID string) {
	defer v.begin()()

	var (
		school *domain.School
		specs  []domain.UniformSpec
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := v.sess.API().Schools.Get(gctx, schoolID)
		school = s
		return err
	})
	g.Go(func() error {
		c, err := v.sess.API().Catalog.ForSchool(gctx, schoolID)
		specs = c
		return err
	})
	if err := g.Wait(); err != nil {
		v.School, v.catalog, v.Specs = nil, nil, []domain.UniformSpec{}
		if v.fail(ctx, v.sess, "load school "+schoolID, err, "Failed to load school") == ProblemNotFound {
			v.Error = "School not found"
		}
		return
	}
	v.School, v.catalog = school, specs
	v.Filter(v.Gender)
}

// Filter re-applies the gender filter to the loaded catalog.
func (v *SchoolDetailsView) Filter(f GenderFilter) {
	v.Gender = f
	v.Specs = FilterByGender(v.catalog, f)
}

// AddToCart puts one unit of a listing in the session's cart.
func (v *SchoolDetailsView) AddToCart(ctx context.Context, listingID string) {
	defer v.begin()()
	if _, err := v.sess.API().Checkout.AddItem(ctx, listingID, 1); err != nil {
		v.fail(ctx, v.sess, "add to cart", err, "Failed to add to cart")
		return
	}
	v.Notice = "Added to cart"
}
