package content

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	repo "github.com/flameguard/flameguard-site/internal/db/controller/content"
	"github.com/flameguard/flameguard-site/internal/db/controller/singleton"
	"github.com/flameguard/flameguard-site/internal/db/models"
)

func newDB(t *testing.T, tables ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(tables...))

	return db
}

func TestDefaultFallback(t *testing.T) {
	fb, err := DefaultFallback()
	require.NoError(t, err)

	assert.NotEmpty(t, fb.Navigation)
	require.NotEmpty(t, fb.Hero)
	assert.NotEmpty(t, fb.Hero[0].Title)
	assert.NotEmpty(t, fb.Footer.CompanyName)
	assert.NotEmpty(t, fb.Requisites.FullName)
	assert.GreaterOrEqual(t, len(fb.ScrollSection.TextBlocks), models.MinTextBlocks)
	assert.LessOrEqual(t, len(fb.ScrollSection.TextBlocks), models.MaxTextBlocks)
}

func TestParseFallback_Invalid(t *testing.T) {
	_, err := ParseFallback([]byte("hero: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_AllSectionsFromDB(t *testing.T) {
	db := newDB(t, models.All()...)
	ctx := context.Background()

	heroes := repo.New[models.Hero](db)
	require.NoError(t, heroes.Create(ctx, &models.Hero{Title: "Stored hero", Base: models.Base{IsActive: true}}))

	about := repo.New[models.AboutItem](db)
	require.NoError(t, about.Create(ctx, &models.AboutItem{Title: "visible", Base: models.Base{IsActive: true}}))
	require.NoError(t, about.Create(ctx, &models.AboutItem{Title: "hidden"}))

	require.NoError(t, singleton.Footer.Save(ctx, db, &models.FooterSettings{CompanyName: "Stored Ltd"}))

	l, err := NewLoader(db)
	require.NoError(t, err)

	p := l.Home(ctx)

	assert.Empty(t, p.Failed)
	assert.Empty(t, p.Error())
	assert.Equal(t, "Stored hero", p.Hero.Title)
	require.Len(t, p.About, 1)
	assert.Equal(t, "visible", p.About[0].Title)
	assert.Equal(t, "Stored Ltd", p.Footer.CompanyName)

	// empty tables are legitimately empty, not failures
	assert.Empty(t, p.Products)
	assert.Empty(t, p.Videos)

	// never saved singleton shows the fallback without an error
	assert.Equal(t, l.Fallback().ScrollSection.Title, p.ScrollSection.Title)
}

func TestLoad_EmptyHeroUsesFallback(t *testing.T) {
	db := newDB(t, models.All()...)

	l, err := NewLoader(db)
	require.NoError(t, err)

	p := l.Load(context.Background(), SectionHero)

	assert.Empty(t, p.Failed)
	assert.Equal(t, l.Fallback().Hero[0].Title, p.Hero.Title)
}

func TestLoad_FailingSectionsUseFallback(t *testing.T) {
	// only heroes and settings exist, every other table is missing
	db := newDB(t, &models.Hero{}, &models.Setting{})
	ctx := context.Background()

	require.NoError(t, repo.New[models.Hero](db).Create(ctx, &models.Hero{Title: "Stored hero", Base: models.Base{IsActive: true}}))

	l, err := NewLoader(db)
	require.NoError(t, err)

	p := l.Home(ctx)

	assert.Equal(t, "Stored hero", p.Hero.Title)
	assert.Equal(t, ErrorMessage, p.Error())
	assert.ElementsMatch(t, []Section{
		SectionNavigation, SectionAbout, SectionProducts, SectionVideos, SectionProductModals,
	}, p.Failed)
	assert.Equal(t, l.Fallback().Navigation, p.Navigation)
	assert.Equal(t, l.Fallback().About, p.About)
	assert.Equal(t, l.Fallback().Products, p.Products)
	assert.Contains(t, p.FailedNames(), "navigation")
}

func TestLoad_BrokenSingletonUsesFallback(t *testing.T) {
	db := newDB(t, &models.Setting{})
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Setting{Name: singleton.Requisites.Name, Value: []byte("{broken")}).Error)

	l, err := NewLoader(db)
	require.NoError(t, err)

	p := l.Load(ctx, SectionRequisites)

	assert.Equal(t, []Section{SectionRequisites}, p.Failed)
	assert.Equal(t, l.Fallback().Requisites, p.Requisites)
}
