// Package content assembles the public pages from the database.
//
// Sections are read concurrently. A section that fails is logged and replaced by its
// built-in fallback, and the page records a visitor-facing error, so a page is never blank.
package content

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	repo "github.com/flameguard/flameguard-site/internal/db/controller/content"
	"github.com/flameguard/flameguard-site/internal/db/controller/singleton"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/metrics"
)

// Section names a block of a page.
type Section string

// Sections of the public site.
const (
	SectionNavigation    Section = "navigation"
	SectionHero          Section = "hero"
	SectionAbout         Section = "about"
	SectionProducts      Section = "products"
	SectionVideos        Section = "videos"
	SectionDocuments     Section = "documents"
	SectionProductModals Section = "product_modals"
	SectionFooter        Section = "footer"
	SectionRequisites    Section = "requisites"
	SectionScrollSection Section = "scroll_section"
)

// ErrorMessage is shown on a page that had to use fallback content.
const ErrorMessage = "Some content could not be loaded and is shown from a saved copy"

const (
	defaultTimeout = 5 * time.Second
	maxParallel    = 4
)

// HomeSections are the sections of the home page.
var HomeSections = []Section{
	SectionNavigation, SectionHero, SectionAbout, SectionProducts, SectionVideos,
	SectionProductModals, SectionScrollSection, SectionFooter,
}

// Page is the content of one public page.
type Page struct {
	Navigation    []models.NavigationItem
	Hero          models.Hero
	About         []models.AboutItem
	Products      []models.Product
	Videos        []models.Video
	Documents     []models.Document
	ProductModals []models.ProductModal
	Footer        models.FooterSettings
	Requisites    models.Requisites
	ScrollSection models.ScrollSection

	// Failed lists the sections replaced by fallback content.
	Failed []Section

	mu sync.Mutex
}

// Error returns the visitor-facing error, or an empty string when every section loaded.
func (p *Page) Error() string {
	if len(p.Failed) == 0 {
		return ""
	}

	return ErrorMessage
}

// FailedNames returns the failed sections as a comma separated list.
func (p *Page) FailedNames() string {
	names := make([]string, len(p.Failed))
	for i, s := range p.Failed {
		names[i] = string(s)
	}

	return strings.Join(names, ", ")
}

func (p *Page) fail(s Section) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Failed = append(p.Failed, s)
}

// Loader reads page content.
type Loader struct {
	db       *gorm.DB
	fallback *Fallback
	timeout  time.Duration
}

// NewLoader returns a loader using the embedded fallback content.
func NewLoader(db *gorm.DB) (*Loader, error) {
	fb, err := DefaultFallback()
	if err != nil {
		return nil, err
	}

	return &Loader{db: db, fallback: fb, timeout: defaultTimeout}, nil
}

// Fallback returns the fallback content.
func (l *Loader) Fallback() *Fallback {
	return l.fallback
}

// Home loads the home page.
func (l *Loader) Home(ctx context.Context) *Page {
	return l.Load(ctx, HomeSections...)
}

// Load reads the given sections concurrently. It never fails: broken sections get fallback content.
func (l *Loader) Load(ctx context.Context, sections ...Section) *Page {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	p := new(Page)

	var g errgroup.Group
	g.SetLimit(maxParallel)

	for _, s := range sections {
		g.Go(func() error {
			if err := l.loadSection(ctx, p, s); err != nil {
				log.Error().Err(err).Str("section", string(s)).Msg("content section failed, using fallback")
				metrics.ContentFallback(string(s))
				l.applyFallback(p, s)
				p.fail(s)
			}

			return nil
		})
	}

	_ = g.Wait()

	slices.Sort(p.Failed)

	return p
}

func list[T any, P repo.Row[T]](ctx context.Context, db *gorm.DB) ([]T, error) {
	return repo.New[T, P](db).List(ctx, true)
}

func (l *Loader) loadSection(ctx context.Context, p *Page, s Section) error {
	var err error

	switch s {
	case SectionNavigation:
		p.Navigation, err = list[models.NavigationItem](ctx, l.db)
	case SectionHero:
		var heroes []models.Hero

		heroes, err = list[models.Hero](ctx, l.db)
		if err == nil && len(heroes) > 0 {
			p.Hero = heroes[0]
		} else if err == nil && len(l.fallback.Hero) > 0 {
			// the hero is the first thing a visitor sees and is never left empty
			p.Hero = l.fallback.Hero[0]
		}
	case SectionAbout:
		p.About, err = list[models.AboutItem](ctx, l.db)
	case SectionProducts:
		p.Products, err = list[models.Product](ctx, l.db)
	case SectionVideos:
		p.Videos, err = list[models.Video](ctx, l.db)
	case SectionDocuments:
		p.Documents, err = list[models.Document](ctx, l.db)
	case SectionProductModals:
		p.ProductModals, err = list[models.ProductModal](ctx, l.db)
	case SectionFooter:
		err = loadSingleton(ctx, l.db, singleton.Footer, &p.Footer, l.fallback.Footer)
	case SectionRequisites:
		err = loadSingleton(ctx, l.db, singleton.Requisites, &p.Requisites, l.fallback.Requisites)
	case SectionScrollSection:
		err = loadSingleton(ctx, l.db, singleton.ScrollSection, &p.ScrollSection, l.fallback.ScrollSection)
	}

	return err
}

// loadSingleton reads a singleton. One that was never saved shows the fallback without being an error.
func loadSingleton[T any](ctx context.Context, db *gorm.DB, k singleton.Kind[T], dst *T, fb T) error {
	v, err := k.Load(ctx, db)
	if errors.Is(err, singleton.ErrNotFound) {
		*dst = fb
		return nil
	}

	if err != nil {
		return err
	}

	*dst = *v

	return nil
}

func (l *Loader) applyFallback(p *Page, s Section) {
	fb := l.fallback

	switch s {
	case SectionNavigation:
		p.Navigation = fb.Navigation
	case SectionHero:
		if len(fb.Hero) > 0 {
			p.Hero = fb.Hero[0]
		}
	case SectionAbout:
		p.About = fb.About
	case SectionProducts:
		p.Products = fb.Products
	case SectionVideos:
		p.Videos = fb.Videos
	case SectionDocuments:
		p.Documents = fb.Documents
	case SectionProductModals:
		p.ProductModals = fb.ProductModals
	case SectionFooter:
		p.Footer = fb.Footer
	case SectionRequisites:
		p.Requisites = fb.Requisites
	case SectionScrollSection:
		p.ScrollSection = fb.ScrollSection
	}
}
