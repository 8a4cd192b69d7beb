package utils

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ledgerColumns are maintained by stock, sale and due operations only.
var ledgerColumns = map[string]struct{}{
	"id":                 {},
	"shop_owner_id":      {},
	"due_amount":         {},
	"total_taken":        {},
	"total_paid":         {},
	"total_investment":   {},
	"total_stock_amount": {},
	"total_profit":       {},
	"total_loss":         {},
	"total_sold":         {},
	"stock_amount":       {},
}

// PatchColumns maps the non-nil pointer fields of a DTO to column updates.
// The column is taken from `gorm:"column:..."` when present, else from the json tag.
// Ledger columns are refused.
func PatchColumns(dto any) (map[string]any, error) {
	res := make(map[string]any)
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("patch: expected pointer to struct, got %T", dto)
	}
	s := v.Elem()
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		fv := s.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		name := columnOf(t.Field(i))
		if name == "" {
			continue
		}
		if _, ok := ledgerColumns[name]; ok {
			return nil, fmt.Errorf("patch: column %q is not writable", name)
		}
		res[name] = fv.Elem().Interface()
	}
	return res, nil
}

func columnOf(sf reflect.StructField) string {
	for _, opt := range strings.Split(sf.Tag.Get("gorm"), ";") {
		if col, ok := strings.CutPrefix(strings.TrimSpace(opt), "column:"); ok && col != "" {
			return col
		}
	}
	name := strings.Split(sf.Tag.Get("json"), ",")[0]
	if name == "-" {
		return ""
	}
	return name
}

// ParseIntDefault parses a non-negative query value, falling back to def.
func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}
