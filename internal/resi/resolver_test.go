package resi_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
	"github.com/noah-isme/backend-logistik/internal/obs"
	"github.com/noah-isme/backend-logistik/internal/resi"
	"github.com/noah-isme/backend-logistik/internal/resilience"
)

func registerMetrics(t *testing.T) {
	t.Helper()
	obs.MustRegisterDomainMetrics("logistik", prometheus.NewRegistry())
}

func newCache(t *testing.T) (*resi.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return resi.NewCache(client, time.Minute), mr
}

func TestCustomerResolver(t *testing.T) {
	store := referenceFixture()
	r := resi.NewCustomerResolver(resi.ResolverConfig{Store: store, Logger: zerolog.Nop()})

	c, err := r.Resolve(context.Background(), "C100")
	require.NoError(t, err)
	require.Equal(t, "W007", c.Division)
	require.Equal(t, "A", c.RateClass)

	_, err = r.Resolve(context.Background(), "C999")
	var miss *resi.ResolutionMiss
	require.ErrorAs(t, err, &miss)
	require.Equal(t, resi.KindCustomer, miss.Kind)
	require.ErrorIs(t, err, resi.ErrCustomerNotFound)

	_, err = r.Resolve(context.Background(), "  ")
	var verr *resi.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCustomerResolverKeepsFirstPairAndReportsAmbiguity(t *testing.T) {
	registerMetrics(t)
	store := referenceFixture().addHistory("C100", "W008", "Z", "X1", "P2", "", "D02")
	var buf bytes.Buffer
	r := resi.NewCustomerResolver(resi.ResolverConfig{Store: store, Logger: zerolog.New(&buf)})

	before := testutil.ToFloat64(obs.ResiReferenceAmbiguity.WithLabelValues(resi.KindCustomer))
	c, err := r.Resolve(context.Background(), "C100")
	require.NoError(t, err)
	require.Equal(t, "W007", c.Division)
	require.Equal(t, "A", c.RateClass)
	require.Equal(t, before+1, testutil.ToFloat64(obs.ResiReferenceAmbiguity.WithLabelValues(resi.KindCustomer)))
	require.Contains(t, buf.String(), "W008/Z")
	require.Contains(t, buf.String(), `"level":"warn"`)
}

func TestCustomerResolverHonoursProbe(t *testing.T) {
	store := referenceFixture().addHistory("C100", "W008", "Z", "X1", "P2", "", "D02")
	var buf bytes.Buffer
	r := resi.NewCustomerResolver(resi.ResolverConfig{Store: store, AmbiguityProbe: 1, Logger: zerolog.New(&buf)})

	c, err := r.Resolve(context.Background(), "C100")
	require.NoError(t, err)
	require.Equal(t, "W007", c.Division)
	require.Empty(t, buf.String())
}

func TestNormalizeProductCodeIsIdempotent(t *testing.T) {
	for _, raw := range []string{" x1 ", "X1", "\tab-9\n", "", "Y22 long"} {
		once := resi.NormalizeProductCode(raw)
		require.Equal(t, once, resi.NormalizeProductCode(once), raw)
	}
	require.Equal(t, "X1", resi.NormalizeProductCode(" x1 "))
}

func TestProductResolver(t *testing.T) {
	store := referenceFixture()
	r := resi.NewProductResolver(resi.ResolverConfig{Store: store, Logger: zerolog.Nop()})
	ctx := context.Background()

	t.Run("variants collapse onto the shortest stored code", func(t *testing.T) {
		p, err := r.Resolve(ctx, " x1 ")
		require.NoError(t, err)
		require.Equal(t, "X1", p.Code)
		require.Equal(t, "X1", p.StoredCode)
		require.Equal(t, "P2", p.ProductClass)
		require.NotNil(t, p.Description)
		require.Equal(t, "Crate 40x60", *p.Description)
	})

	t.Run("prefix match prefers the shortest group", func(t *testing.T) {
		p, err := r.Resolve(ctx, "y2")
		require.NoError(t, err)
		require.Equal(t, "Y2", p.Code)
		require.Equal(t, "Y22", p.StoredCode)
		require.Equal(t, "P3", p.ProductClass)
	})

	t.Run("like wildcards are literal", func(t *testing.T) {
		_, err := r.Resolve(ctx, "%")
		require.ErrorIs(t, err, resi.ErrProductNotFound)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := r.Resolve(ctx, "UNKNOWN")
		var miss *resi.ResolutionMiss
		require.ErrorAs(t, err, &miss)
		require.Equal(t, resi.KindProduct, miss.Kind)
		require.Equal(t, "UNKNOWN", miss.Code)
	})

	t.Run("product without class is a miss", func(t *testing.T) {
		_, err := r.Resolve(ctx, "noclass")
		require.ErrorIs(t, err, resi.ErrProductNotFound)
	})
}

type failingReferenceStore struct {
	*fakeStore
}

func (failingReferenceStore) FindProductExact(context.Context, string) (dbgen.FindProductExactRow, error) {
	return dbgen.FindProductExactRow{}, errStorage
}

func TestProductResolverWrapsStorageFailure(t *testing.T) {
	r := resi.NewProductResolver(resi.ResolverConfig{Store: failingReferenceStore{referenceFixture()}, Logger: zerolog.Nop()})
	_, err := r.Resolve(context.Background(), "X1")
	var perr *resi.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.True(t, errors.Is(err, errStorage))
}

func TestResolversUseCache(t *testing.T) {
	cache, mr := newCache(t)
	store := referenceFixture()
	cfg := resi.ResolverConfig{Store: store, Cache: cache, Logger: zerolog.Nop()}
	customers := resi.NewCustomerResolver(cfg)
	products := resi.NewProductResolver(cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := customers.Resolve(ctx, "C100")
		require.NoError(t, err)
		p, err := products.Resolve(ctx, "x1")
		require.NoError(t, err)
		require.Equal(t, "P2", p.ProductClass)
	}
	require.Equal(t, 1, store.count("ListCustomerProfiles"))
	require.Equal(t, 1, store.count("FindProductExact"))
	require.True(t, mr.Exists("resi:ref:customer:C100"))
	require.True(t, mr.Exists("resi:ref:product:X1"))

	_, err := products.Resolve(ctx, "UNKNOWN")
	require.Error(t, err)
	require.False(t, mr.Exists("resi:ref:product:UNKNOWN"))

	removed, err := cache.Flush(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	_, err = customers.Resolve(ctx, "C100")
	require.NoError(t, err)
	require.Equal(t, 2, store.count("ListCustomerProfiles"))
}

func TestDisabledCacheIsNoop(t *testing.T) {
	var cache *resi.Cache
	ok, err := cache.GetJSON(context.Background(), "customer:C100", &resi.Customer{})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, resi.NewCache(nil, time.Minute).SetJSON(context.Background(), "k", 1))
}

func TestCacheBreakerBypassesFailingRedis(t *testing.T) {
	cache, mr := newCache(t)
	breaker := resilience.NewBreaker(2, 0.5, time.Hour).WithTarget("reference_cache")
	cache.WithBreaker(breaker)
	store := referenceFixture()
	customers := resi.NewCustomerResolver(resi.ResolverConfig{Store: store, Cache: cache, Logger: zerolog.Nop()})
	ctx := context.Background()

	mr.SetError("READONLY redis unavailable")
	for i := 0; i < 4; i++ {
		c, err := customers.Resolve(ctx, "C100")
		require.NoError(t, err)
		require.Equal(t, "W007", c.Division)
	}
	require.Equal(t, resilience.Open, breaker.State())
	require.Equal(t, 4, store.count("ListCustomerProfiles"))

	mr.SetError("")
	ok, err := cache.GetJSON(ctx, "customer:C100", &resi.Customer{})
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, mr.Exists("resi:ref:customer:C100"))
}
