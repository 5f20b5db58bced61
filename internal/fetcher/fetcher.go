// Package fetcher retrieves the reference metrics document and flattens the
// configured group into a model.Snapshot.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/Dicklesworthstone/refdash/internal/config"
	"github.com/Dicklesworthstone/refdash/internal/errors"
	"github.com/Dicklesworthstone/refdash/internal/logger"
	"github.com/Dicklesworthstone/refdash/internal/model"
)

// Source yields one snapshot per call. Dashboards depend on this rather
// than on *Fetcher so tests can substitute canned results.
type Source interface {
	Fetch(ctx context.Context) (model.Snapshot, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) (model.Snapshot, error)

func (f SourceFunc) Fetch(ctx context.Context) (model.Snapshot, error) { return f(ctx) }

// Fetcher issues a single GET against the reference endpoint.
type Fetcher struct {
	Client *http.Client
	cfg    config.Config
	log    logger.Logger
}

func New(cfg config.Config, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Noop()
	}
	return &Fetcher{
		Client: http.DefaultClient,
		cfg:    cfg,
		log:    log,
	}
}

// Fetch requests the endpoint and normalizes the body. On any error the
// returned snapshot is empty and unloaded. Cancelling ctx aborts the request.
func (f *Fetcher) Fetch(ctx context.Context) (model.Snapshot, error) {
	empty := model.Snapshot{Group: f.cfg.Group}

	if f.cfg.Fetch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Fetch.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.Endpoint, nil)
	if err != nil {
		return empty, errors.WrapWithCode(err, errors.ErrFetch,
			"Cannot build request for "+f.cfg.Endpoint,
			"Check the endpoint URL")
	}
	req.Header.Set("Accept", "application/json")
	if f.cfg.Fetch.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.Fetch.UserAgent)
	}

	f.log.Debug("GET %s", f.cfg.Endpoint)
	resp, err := f.Client.Do(req)
	if err != nil {
		return empty, errors.WrapWithCode(err, errors.ErrFetch,
			"Request to "+f.cfg.Endpoint+" failed",
			"Check network connectivity and that the endpoint is reachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return empty, errors.New(errors.ErrFetch,
			fmt.Sprintf("Endpoint answered %s", resp.Status),
			"The reference service may be down; try again later")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, errors.WrapWithCode(err, errors.ErrFetch,
			"Reading response body failed", "")
	}

	snap, malformed, err := normalize(body, f.cfg.Group, f.cfg.MetricPrefix())
	if err != nil {
		return empty, err
	}
	for _, name := range malformed {
		f.log.Warn("metric %s has no numeric times/values arrays; shown as empty", name)
	}
	f.log.Info("fetched %d series for group %s (loaded=%t)", len(snap.Series), snap.Group, snap.Loaded)
	return snap, nil
}

// Normalize extracts current.data.<group> from body. A missing path segment
// is not an error: it yields an empty, unloaded snapshot. Keys of the group
// object are visited in document order and only those starting with prefix
// are kept. A kept entry that is not an object with numeric times and values
// arrays becomes an empty series; only a body that is not JSON fails.
func Normalize(body []byte, group, prefix string) (model.Snapshot, error) {
	snap, _, err := normalize(body, group, prefix)
	return snap, err
}

// normalize is Normalize that also reports the kept entries it had to empty.
func normalize(body []byte, group, prefix string) (model.Snapshot, []string, error) {
	snap := model.Snapshot{Group: group}

	if !json.Valid(body) {
		return snap, nil, errors.New(errors.ErrDecode,
			"Response is not valid JSON",
			"The endpoint may have returned an error page")
	}

	groupBody, typ, _, err := jsonparser.Get(body, "current", "data", group)
	if err != nil || typ != jsonparser.Object {
		return snap, nil, nil
	}

	series := make([]model.MetricSeries, 0)
	var malformed []string
	err = jsonparser.ObjectEach(groupBody, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		// ObjectEach hands over keys already unescaped.
		name := string(key)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		times, values, ok := decodeSeries(value, dataType)
		if !ok {
			malformed = append(malformed, name)
		}
		series = append(series, model.MetricSeries{
			Metric: name,
			Times:  times,
			Values: values,
		})
		return nil
	})
	if err != nil {
		return model.Snapshot{Group: group}, nil, errors.WrapWithCode(err, errors.ErrDecode,
			"Cannot walk group "+group, "")
	}

	snap.Series = series
	snap.Loaded = true
	return snap, malformed, nil
}

// decodeSeries reads the times and values arrays of one metric entry. Absent
// arrays are empty. Anything else unusable empties the whole entry and
// reports ok=false.
func decodeSeries(value []byte, dataType jsonparser.ValueType) (times, values []float64, ok bool) {
	if dataType != jsonparser.Object {
		return []float64{}, []float64{}, false
	}
	times, okT := decodeArray(value, "times")
	values, okV := decodeArray(value, "values")
	if !okT || !okV {
		return []float64{}, []float64{}, false
	}
	return times, values, true
}

func decodeArray(entry []byte, field string) ([]float64, bool) {
	raw, typ, _, err := jsonparser.Get(entry, field)
	if err == jsonparser.KeyPathNotFoundError || typ == jsonparser.Null {
		return []float64{}, true
	}
	if err != nil || typ != jsonparser.Array {
		return []float64{}, false
	}
	var out []float64
	if err := json.Unmarshal(raw, &out); err != nil {
		return []float64{}, false
	}
	return out, true
}
