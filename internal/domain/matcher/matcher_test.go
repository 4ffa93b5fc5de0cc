package matcher

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Literal(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		value   string
		want    bool
	}{
		{"substring", Pattern{Text: "coffee"}, "Starbucks Coffee", true},
		{"case folded", Pattern{Text: "NETFLIX"}, "netflix subscription", true},
		{"case sensitive miss", Pattern{Text: "NETFLIX", CaseSensitive: true}, "netflix subscription", false},
		{"case sensitive hit", Pattern{Text: "NETFLIX", CaseSensitive: true}, "NETFLIX.COM", true},
		{"no match", Pattern{Text: "amazon"}, "Whole Foods", false},
		{"regex chars are literal", Pattern{Text: "a.b"}, "axb", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.value))
		})
	}
}

func TestCompile_Regex(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		value   string
		want    bool
	}{
		{"anywhere", Pattern{Text: `uber\s+eats`, IsRegex: true}, "Payment UBER  Eats 1234", true},
		{"anchored", Pattern{Text: `^shell`, IsRegex: true}, "SHELL OIL 5521", true},
		{"anchored miss", Pattern{Text: `^shell`, IsRegex: true}, "Royal Dutch Shell", false},
		{"case sensitive", Pattern{Text: `^Rent`, IsRegex: true, CaseSensitive: true}, "rent payment", false},
		{"amount", Pattern{Text: `^9\.99$`, IsRegex: true}, "9.99", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.value))
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(Pattern{Text: ""})
	assert.ErrorIs(t, err, ErrEmptyPattern)

	_, err = Compile(Pattern{Text: "([a-z", IsRegex: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid regex")

	// The same text as a literal is fine
	m, err := Compile(Pattern{Text: "([a-z"})
	require.NoError(t, err)
	assert.True(t, m.Match("x([a-z"))
}

func TestCache(t *testing.T) {
	cache := NewCache()

	m1, err := cache.Get(Pattern{Text: "coffee"})
	require.NoError(t, err)
	m2, err := cache.Get(Pattern{Text: "coffee"})
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
	assert.Equal(t, 1, cache.Size())

	// Case sensitivity and regex flag are part of the key
	_, _ = cache.Get(Pattern{Text: "coffee", CaseSensitive: true})
	_, _ = cache.Get(Pattern{Text: "coffee", IsRegex: true})
	assert.Equal(t, 3, cache.Size())

	// Failures are cached
	_, err = cache.Get(Pattern{Text: "(", IsRegex: true})
	require.Error(t, err)
	_, err = cache.Get(Pattern{Text: "(", IsRegex: true})
	require.Error(t, err)
	assert.Equal(t, 4, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestCache_Retain(t *testing.T) {
	cache := NewCache()
	for _, text := range []string{"coffee", "rent", "gas"} {
		_, err := cache.Get(Pattern{Text: text})
		require.NoError(t, err)
	}
	_, _ = cache.Get(Pattern{Text: "(", IsRegex: true})
	require.Equal(t, 4, cache.Size())

	dropped := cache.Retain([]Pattern{{Text: "rent"}, {Text: "unused"}})

	assert.Equal(t, 3, dropped)
	assert.Equal(t, 1, cache.Size())

	// A retained entry is still served from the cache
	m, err := cache.Get(Pattern{Text: "rent"})
	require.NoError(t, err)
	assert.True(t, m.Match("Rent April"))
	assert.Equal(t, 1, cache.Size())

	assert.Equal(t, 1, cache.Retain(nil))
	assert.Equal(t, 0, cache.Size())
}

func TestCache_Concurrent(t *testing.T) {
	cache := NewCache()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := cache.Get(Pattern{Text: "rent"})
			if assert.NoError(t, err) {
				assert.True(t, m.Match("Monthly RENT"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cache.Size())
}

func TestAmountRange(t *testing.T) {
	lo := decimal.RequireFromString("10")
	hi := decimal.RequireFromString("50")

	r := AmountRange{Min: &lo, Max: &hi}
	assert.True(t, r.Contains(decimal.RequireFromString("10")))
	assert.True(t, r.Contains(decimal.RequireFromString("50")))
	assert.True(t, r.Contains(decimal.RequireFromString("-25")))
	assert.False(t, r.Contains(decimal.RequireFromString("9.99")))
	assert.False(t, r.Contains(decimal.RequireFromString("-50.01")))

	assert.True(t, AmountRange{}.Contains(decimal.RequireFromString("1000000")))
	assert.True(t, AmountRange{Min: &lo}.Contains(decimal.RequireFromString("1000000")))

	assert.True(t, r.Valid())
	assert.False(t, AmountRange{Min: &hi, Max: &lo}.Valid())
}

func TestAmountText(t *testing.T) {
	assert.Equal(t, "12.50", AmountText(decimal.RequireFromString("-12.5")))
	assert.Equal(t, "9.99", AmountText(decimal.RequireFromString("9.99")))
}
