package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"portfolio-advisor/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	minCompare       = 2
	maxCompare       = 4
)

//go:embed etfs.yaml
var defaultCatalog []byte

type file struct {
	ETFs []domain.ETF `yaml:"etfs"`
}

type Catalog struct {
	etfs     []domain.ETF
	byTicker map[string]int
}

// Load reads the catalog at path, falling back to the embedded default when
// path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read etf catalog: %w", err)
	}
	return Parse(data)
}

func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded etf catalog is invalid: %v", err))
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse etf catalog: %w", err)
	}

	c := &Catalog{
		etfs:     make([]domain.ETF, 0, len(f.ETFs)),
		byTicker: make(map[string]int, len(f.ETFs)),
	}
	var problems []string
	for i, etf := range f.ETFs {
		etf.Ticker = strings.ToUpper(strings.TrimSpace(etf.Ticker))
		etf.AssetClass = domain.AssetClass(strings.ToLower(string(etf.AssetClass)))
		if etf.Ticker == "" {
			problems = append(problems, fmt.Sprintf("entry %d has no ticker", i))
			continue
		}
		if _, dup := c.byTicker[etf.Ticker]; dup {
			problems = append(problems, fmt.Sprintf("duplicate ticker %s", etf.Ticker))
			continue
		}
		if !etf.AssetClass.IsValid() {
			problems = append(problems, fmt.Sprintf("%s has unsupported asset class %q", etf.Ticker, etf.AssetClass))
			continue
		}
		if etf.ExpenseRatio < 0 || etf.AUMBillions < 0 {
			problems = append(problems, fmt.Sprintf("%s has negative figures", etf.Ticker))
			continue
		}
		c.byTicker[etf.Ticker] = len(c.etfs)
		c.etfs = append(c.etfs, etf)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid etf catalog: %s", strings.Join(problems, "; "))
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.etfs) }

func (c *Catalog) List(filter domain.ETFFilter) []domain.ETF {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]domain.ETF, 0, min(limit, len(c.etfs)))
	for _, etf := range c.etfs {
		if filter.AssetClass != "" && etf.AssetClass != filter.AssetClass {
			continue
		}
		if query != "" && !matches(etf, query) {
			continue
		}
		out = append(out, etf)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (c *Catalog) Get(ticker string) (domain.ETF, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	idx, ok := c.byTicker[ticker]
	if !ok {
		return domain.ETF{}, fmt.Errorf("%w: %s", domain.ErrETFNotFound, ticker)
	}
	return c.etfs[idx], nil
}

// Compare returns the requested ETFs side by side along with the leader in
// each headline metric.
func (c *Catalog) Compare(tickers []string) (domain.ETFComparison, error) {
	seen := make(map[string]struct{}, len(tickers))
	etfs := make([]domain.ETF, 0, len(tickers))
	for _, raw := range tickers {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if ticker == "" {
			continue
		}
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}
		etf, err := c.Get(ticker)
		if err != nil {
			return domain.ETFComparison{}, err
		}
		etfs = append(etfs, etf)
	}
	if len(etfs) < minCompare || len(etfs) > maxCompare {
		return domain.ETFComparison{}, domain.NewValidationError(
			fmt.Sprintf("compare needs between %d and %d distinct tickers, got %d", minCompare, maxCompare, len(etfs)),
		)
	}

	cmp := domain.ETFComparison{ETFs: etfs}
	lowest, largest, yield, diversified := etfs[0], etfs[0], etfs[0], etfs[0]
	for _, etf := range etfs[1:] {
		if etf.ExpenseRatio < lowest.ExpenseRatio {
			lowest = etf
		}
		if etf.AUMBillions > largest.AUMBillions {
			largest = etf
		}
		if etf.DividendYield > yield.DividendYield {
			yield = etf
		}
		if etf.Holdings > diversified.Holdings {
			diversified = etf
		}
	}
	cmp.LowestFee = lowest.Ticker
	cmp.LargestAUM = largest.Ticker
	cmp.HighestYield = yield.Ticker
	cmp.MostDiversified = diversified.Ticker
	return cmp, nil
}

// byClass returns the ETFs of one asset class, those tagged with any of the
// investor's interests first, then by fee and size.
func (c *Catalog) byClass(class domain.AssetClass, interests []string) []domain.ETF {
	var out []domain.ETF
	for _, etf := range c.etfs {
		if etf.AssetClass == class {
			out = append(out, etf)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		mi, mj := tagMatches(out[i], interests), tagMatches(out[j], interests)
		if mi != mj {
			return mi > mj
		}
		if out[i].ExpenseRatio != out[j].ExpenseRatio {
			return out[i].ExpenseRatio < out[j].ExpenseRatio
		}
		return out[i].AUMBillions > out[j].AUMBillions
	})
	return out
}

func matches(etf domain.ETF, query string) bool {
	if strings.Contains(strings.ToLower(etf.Ticker), query) ||
		strings.Contains(strings.ToLower(etf.Name), query) ||
		strings.Contains(strings.ToLower(etf.Category), query) {
		return true
	}
	for _, tag := range etf.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func tagMatches(etf domain.ETF, interests []string) int {
	n := 0
	for _, tag := range etf.Tags {
		for _, interest := range interests {
			if tag == interest {
				n++
			}
		}
	}
	return n
}
