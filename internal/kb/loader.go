package kb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nebulasur/ventia/internal/domain"
)

// ParseItems reads line-oriented KEY: value records. A new record
// starts at each ID: line; lines without a separator are skipped.
func ParseItems(r io.Reader) ([]domain.KbItem, error) {
	var items []domain.KbItem
	fields := map[string]string{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "ID:") && len(fields) > 0 {
			items = append(items, itemFromFields(fields))
			fields = map[string]string{}
		}

		sep := strings.Index(line, ":")
		if sep <= 0 {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(line[:sep]))
		fields[key] = strings.TrimSpace(line[sep+1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan kb file: %w", err)
	}

	if len(fields) > 0 {
		items = append(items, itemFromFields(fields))
	}
	return items, nil
}

func itemFromFields(fields map[string]string) domain.KbItem {
	get := func(key, fallback string) string {
		if v, ok := fields[key]; ok && v != "" {
			return v
		}
		return fallback
	}
	return domain.KbItem{
		ID:          get("ID", "N/A"),
		Title:       get("TITLE", "Sin titulo"),
		Type:        get("TYPE", "servicio"),
		Description: get("DESCRIPTION", ""),
		Benefits:    get("BENEFITS", ""),
		UseCases:    get("USE_CASES", ""),
		Price:       get("PRICE", "0 EUR"),
		Notes:       get("NOTES", ""),
	}
}

// LoadDir reads every kb<Tenant>.txt file in dir and returns the
// items grouped by tenant id. Missing tenant files are not an error;
// an unreadable dir is.
func LoadDir(dir string) (map[string][]domain.KbItem, error) {
	byTenant := map[string][]domain.KbItem{}
	for _, tenant := range []string{TenantA, TenantB, TenantC} {
		path := filepath.Join(dir, "kb"+tenant+".txt")
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		items, err := ParseItems(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		byTenant[tenant] = items
	}
	if len(byTenant) == 0 {
		return nil, fmt.Errorf("no kb files found in %s", dir)
	}
	return byTenant, nil
}
