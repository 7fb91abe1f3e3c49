package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]WeatherSnapshot
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]WeatherSnapshot)}
}

func (m *memStore) Save(key string, s WeatherSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append(m.data[key], s)
}

func (m *memStore) Latest(key string) (WeatherSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.data[key]
	if len(h) == 0 {
		return WeatherSnapshot{}, errors.New("not found")
	}
	return h[len(h)-1], nil
}

func (m *memStore) Range(key string, from, to time.Time) ([]WeatherSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

type stubProvider struct {
	name     string
	reading  ProviderReading
	forecast []ProviderReading
	err      error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Fetch(context.Context, Location) (ProviderReading, error) {
	r := p.reading
	r.ProviderName = p.name
	return r, p.err
}

type stubForecaster struct{ stubProvider }

func (p *stubForecaster) FetchForecast(_ context.Context, _ Location, days int) ([]ProviderReading, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := p.forecast
	if len(out) > days {
		out = out[:days]
	}
	return out, nil
}

type countingRecorder struct {
	mu     sync.Mutex
	failed map[string]int
}

func (c *countingRecorder) ProviderFailed(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed == nil {
		c.failed = make(map[string]int)
	}
	c.failed[name]++
}

var cuttack = Location{City: "Cuttack", Country: "IN"}

func TestFetchAndStore_AggregatesSuccessfulProviders(t *testing.T) {
	ts := time.Date(2026, 6, 1, 6, 0, 0, 0, time.UTC)
	store := newMemStore()
	rec := &countingRecorder{}
	svc := NewService(store, []Provider{
		&stubProvider{name: "a", reading: ProviderReading{Timestamp: ts, TemperatureC: 20, HumidityPct: 80, PrecipMm: 10, Condition: ConditionRain}},
		&stubProvider{name: "b", reading: ProviderReading{Timestamp: ts, TemperatureC: 30, HumidityPct: 90, PrecipMm: 30, Condition: ConditionRain}},
		&stubProvider{name: "c", err: errors.New("boom")},
	})
	svc.SetFailureRecorder(rec)

	require.NoError(t, svc.FetchAndStore(context.Background(), cuttack))

	snap, err := svc.GetLatest(Location{City: "cuttack", Country: "in"})
	require.NoError(t, err)
	assert.Equal(t, 25.0, snap.Temperature)
	assert.Equal(t, 85.0, snap.Humidity)
	assert.Equal(t, 20.0, snap.PrecipMM)
	assert.Equal(t, ConditionRain, snap.Condition)
	assert.Len(t, snap.Providers, 2)
	assert.Equal(t, 1, rec.failed["c"])
}

func TestFetchAndStore_NoProviders(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	assert.ErrorIs(t, svc.FetchAndStore(context.Background(), cuttack), ErrNoProviders)
}

func TestFetchAndStore_AllFailKeepsLastSnapshot(t *testing.T) {
	store := newMemStore()
	store.Save(cuttack.Key(), WeatherSnapshot{Temperature: 12})
	svc := NewService(store, []Provider{&stubProvider{name: "a", err: errors.New("down")}})

	require.NoError(t, svc.FetchAndStore(context.Background(), cuttack))

	snap, err := svc.GetLatest(cuttack)
	require.NoError(t, err)
	assert.Equal(t, 12.0, snap.Temperature)
}

func TestGetForecast_MergesProvidersPerDay(t *testing.T) {
	d1 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)

	svc := NewService(newMemStore(), []Provider{
		&stubProvider{name: "current-only"},
		&stubForecaster{stubProvider{name: "a", forecast: []ProviderReading{
			{Timestamp: d2.Add(3 * time.Hour), TemperatureC: 20, HumidityPct: 70},
			{Timestamp: d1, TemperatureC: 10, HumidityPct: 60},
			{Timestamp: d3, TemperatureC: 30},
		}}},
		&stubForecaster{stubProvider{name: "b", forecast: []ProviderReading{
			{Timestamp: d1, TemperatureC: 20, HumidityPct: 80},
		}}},
	})

	f, err := svc.GetForecast(context.Background(), cuttack, 2)
	require.NoError(t, err)
	require.Len(t, f, 2)
	assert.Equal(t, d1, f[0].Timestamp)
	assert.Equal(t, 15.0, f[0].Temperature)
	assert.Equal(t, 70.0, f[0].Humidity)
	assert.Equal(t, d2, f[1].Timestamp)
	assert.Equal(t, 20.0, f[1].Temperature)

	readings := f.DailyReadings(6.5)
	require.Len(t, readings, 2)
	assert.Equal(t, 6.5, readings[0].Reading.SoilPH)
	assert.Equal(t, d1, readings[0].Date)
}

func TestGetForecast_Errors(t *testing.T) {
	svc := NewService(newMemStore(), []Provider{
		&stubForecaster{stubProvider{name: "a", err: errors.New("down")}},
	})

	_, err := svc.GetForecast(context.Background(), cuttack, 0)
	assert.Error(t, err)

	_, err = svc.GetForecast(context.Background(), cuttack, 3)
	assert.ErrorIs(t, err, ErrNoForecast)
}

func TestSnapshotReading(t *testing.T) {
	snap := WeatherSnapshot{Temperature: 26, Humidity: 88, PrecipMM: 110, WindSpeed: 2.5}
	r := snap.Reading(6.8)
	assert.Equal(t, 26.0, r.Temperature)
	assert.Equal(t, 88.0, r.Humidity)
	assert.Equal(t, 110.0, r.Rainfall)
	assert.InDelta(t, 9.0, r.WindSpeed, 1e-9)
	assert.Equal(t, 6.8, r.SoilPH)
}

func TestAggregateReadings_TieGoesToFirstCondition(t *testing.T) {
	snap := AggregateReadings(cuttack, []ProviderReading{
		{ProviderName: "a", Condition: ConditionCloudy},
		{ProviderName: "b", Condition: ConditionRain},
	})
	assert.Equal(t, ConditionCloudy, snap.Condition)

	empty := AggregateReadings(cuttack, nil)
	assert.Equal(t, ConditionUnknown, empty.Condition)
	assert.False(t, empty.Timestamp.IsZero())
}

func TestLocationKey(t *testing.T) {
	assert.Equal(t, "cuttack:in", Location{City: " Cuttack ", Country: "IN"}.Key())
	lat, lon := 1.0, 2.0
	assert.True(t, Location{Lat: &lat, Lon: &lon}.HasCoordinates())
	assert.False(t, Location{Lat: &lat}.HasCoordinates())
}
