// Package banks holds the static catalog of banks and e-wallets a
// transaction, goal or debt can be attributed to.
package banks

// Cash is the bank id assumed when a record carries none.
const Cash = "cash"

type Bank struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Icon      string `json:"icon"`
	BgColor   string `json:"bg_color"`
	TextColor string `json:"text_color"`
}

var catalog = []Bank{
	{"bca", "Bank Central Asia", "BCA", "🏦", "bg-blue-600", "text-white"},
	{"bni", "Bank Negara Indonesia", "BNI", "🏛️", "bg-orange-600", "text-white"},
	{"bri", "Bank Rakyat Indonesia", "BRI", "🏪", "bg-blue-700", "text-white"},
	{"mandiri", "Bank Mandiri", "Mandiri", "💳", "bg-yellow-600", "text-blue-900"},
	{"bsi", "Bank Syariah Indonesia", "BSI", "🕌", "bg-green-600", "text-white"},
	{"jago", "Bank Jago", "Jago", "📱", "bg-purple-600", "text-white"},
	{"seabank", "SeaBank", "SeaBank", "🌊", "bg-cyan-600", "text-white"},
	{"blu", "BCA Digital (blu)", "blu", "💙", "bg-sky-500", "text-white"},
	{"jenius", "Jenius BTPN", "Jenius", "🎯", "bg-indigo-600", "text-white"},
	{"danamon", "Bank Danamon", "Danamon", "🏢", "bg-red-600", "text-white"},
	{"cimb", "CIMB Niaga", "CIMB", "🏦", "bg-red-700", "text-white"},
	{"permata", "Bank Permata", "Permata", "💎", "bg-emerald-600", "text-white"},
	{"gopay", "GoPay", "GoPay", "🏍️", "bg-green-500", "text-white"},
	{"ovo", "OVO", "OVO", "🟣", "bg-purple-700", "text-white"},
	{"dana", "DANA", "DANA", "💰", "bg-blue-500", "text-white"},
	{Cash, "Cash/Tunai", "Cash", "💵", "bg-gray-600", "text-white"},
	{"other", "Lainnya", "Lainnya", "🏪", "bg-gray-500", "text-white"},
}

// DefaultActive is the active bank selection before the user picks one.
var DefaultActive = []string{Cash, "bca", "bni", "bri", "mandiri"}

// All returns a copy of the catalog in display order.
func All() []Bank {
	out := make([]Bank, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks a bank up by id.
func ByID(id string) (Bank, bool) {
	for _, b := range catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Bank{}, false
}

// Known reports whether every id is in the catalog; the first unknown id is returned.
func Known(ids []string) (string, bool) {
	for _, id := range ids {
		if _, ok := ByID(id); !ok {
			return id, false
		}
	}
	return "", true
}
