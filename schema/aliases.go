package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Aliases maps a normalized header to its canonical column name.
type Aliases map[string]string

var builtinAliases = Aliases{
	"total_pembayaran":                   TotalPayment,
	"waktu_pesanan_dibuat":               OrderTimestamp,
	"total_diskon":                       TotalDiscount,
	"status_pesanan":                     OrderStatus,
	"opsi_pengiriman":                    ShippingOption,
	"metode_pembayaran":                  PaymentMethod,
	"kota_kabupaten":                     City,
	"provinsi":                           Province,
	"ongkos_kirim_dibayar_oleh_pembeli":  ShippingCostBuyer,
	"perkiraan_ongkos_kirim":             ShippingCostEstimate,
	"estimasi_potongan_biaya_pengiriman": ShippingDiscountEstimate,
}

// DefaultAliases returns a fresh copy of the built-in alias table.
func DefaultAliases() Aliases {
	out := make(Aliases, len(builtinAliases))
	for k, v := range builtinAliases {
		out[k] = v
	}
	return out
}

// Canonical returns the canonical name for a normalized header, or the header itself.
func (a Aliases) Canonical(normalized string) string {
	if c, ok := a[normalized]; ok {
		return c
	}
	return normalized
}

// LoadAliases reads a YAML map of alias to canonical name and layers it over
// the built-ins. An empty path returns the built-ins.
func LoadAliases(path string) (Aliases, error) {
	aliases := DefaultAliases()
	if path == "" {
		return aliases, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}
	extra := map[string]string{}
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse aliases %s: %w", path, err)
	}
	for alias, canonical := range extra {
		if canonical == "" {
			return nil, fmt.Errorf("alias %q has no canonical name", alias)
		}
		if _, ok := builtinAliases[alias]; ok {
			continue
		}
		aliases[alias] = canonical
	}
	return aliases, nil
}
