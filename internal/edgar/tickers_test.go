package edgar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statements-cli/internal/fetcher"
	"github.com/sells-group/statements-cli/internal/model"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Lookup(ctx context.Context, ticker string) (model.Company, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(model.Company), args.Error(1)
}

const tickersJSON = `{
  "0": {"cik_str": 104169, "ticker": "WMT", "title": "Walmart Inc."},
  "1": {"cik_str": 1067983, "ticker": "BRK-B", "title": "BERKSHIRE HATHAWAY INC"},
  "2": {"cik_str": 0, "ticker": "BAD", "title": "No CIK"}
}`

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "WMT", NormalizeTicker(" wmt "))
	assert.Equal(t, "BRK-B", NormalizeTicker("brk.b"))
}

func TestIsCIK(t *testing.T) {
	assert.True(t, IsCIK("104169"))
	assert.True(t, IsCIK("0000104169"))
	assert.False(t, IsCIK("WMT"))
	assert.False(t, IsCIK(""))
	assert.False(t, IsCIK("00001041690"))
}

func TestStaticLookup(t *testing.T) {
	s := StaticLookup{"wmt": "104169", "BRK-B": "0001067983"}

	c, err := s.Lookup(context.Background(), "WMT")
	require.NoError(t, err)
	assert.Equal(t, model.Company{Ticker: "WMT", CIK: "0000104169"}, c)

	c, err = s.Lookup(context.Background(), "brk.b")
	require.NoError(t, err)
	assert.Equal(t, "0001067983", c.CIK)

	_, err = s.Lookup(context.Background(), "ZZZZ")
	assert.True(t, errors.Is(err, ErrTickerNotFound))
}

func TestSECLookup(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(tickersJSON))
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{MaxRetries: 1, Backoff: time.Millisecond})
	s := NewSECLookup(f, srv.URL)

	c, err := s.Lookup(context.Background(), "wmt")
	require.NoError(t, err)
	assert.Equal(t, model.Company{Ticker: "WMT", CIK: "0000104169", Name: "Walmart Inc."}, c)

	c, err = s.Lookup(context.Background(), "BRK.B")
	require.NoError(t, err)
	assert.Equal(t, "0001067983", c.CIK)

	_, err = s.Lookup(context.Background(), "BAD")
	assert.True(t, errors.Is(err, ErrTickerNotFound))

	assert.Equal(t, int32(1), hits.Load(), "ticker map is downloaded once")
}

func TestSECLookup_DownloadFailureRetriedLater(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(tickersJSON))
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{MaxRetries: 1, Backoff: time.Millisecond})
	s := NewSECLookup(f, srv.URL)

	_, err := s.Lookup(context.Background(), "WMT")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTickerNotFound))

	fail.Store(false)
	c, err := s.Lookup(context.Background(), "WMT")
	require.NoError(t, err)
	assert.Equal(t, "0000104169", c.CIK)
}

func TestChainLookup(t *testing.T) {
	ctx := context.Background()
	first := new(mockLookup)
	second := new(mockLookup)
	chain := ChainLookup{first, second}

	first.On("Lookup", ctx, "AAPL").Return(model.Company{}, ErrTickerNotFound)
	second.On("Lookup", ctx, "AAPL").Return(model.Company{Ticker: "AAPL", CIK: "0000320193"}, nil)

	c, err := chain.Lookup(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "0000320193", c.CIK)
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestChainLookup_Errors(t *testing.T) {
	ctx := context.Background()
	notFound := new(mockLookup)
	notFound.On("Lookup", ctx, "XYZ").Return(model.Company{}, ErrTickerNotFound)

	_, err := ChainLookup{notFound}.Lookup(ctx, "XYZ")
	assert.True(t, errors.Is(err, ErrTickerNotFound))

	broken := new(mockLookup)
	boom := errors.New("network down")
	broken.On("Lookup", ctx, "XYZ").Return(model.Company{}, boom)

	_, err = ChainLookup{broken, notFound}.Lookup(ctx, "XYZ")
	assert.ErrorIs(t, err, boom)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	lookup := new(mockLookup)

	c, err := Resolve(ctx, lookup, "320193")
	require.NoError(t, err)
	assert.Equal(t, "0000320193", c.CIK)
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)

	lookup.On("Lookup", ctx, "aapl").Return(model.Company{Ticker: "AAPL", CIK: "0000320193"}, nil)
	c, err = Resolve(ctx, lookup, "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", c.Ticker)
}
