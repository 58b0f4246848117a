// Package i18n holds the palette's UI strings for the most common languages.
package i18n

import "strings"

// DefaultLocale is used when no locale is configured or the locale is unknown
const DefaultLocale = "en"

// Translation keys
const (
	KeySearch       = "search"
	KeyNoResults    = "noResults"
	KeyLoading      = "loading"
	KeySearchError  = "searchError"
	KeySearchIn     = "searchIn"
	KeyTypeToSearch = "typeToSearch"
	KeyRecent       = "recent"
)

var translations = map[string]map[string]string{
	"en": {
		KeySearch:       "Search...",
		KeyNoResults:    "No results",
		KeyLoading:      "Loading...",
		KeySearchError:  "Search failed",
		KeySearchIn:     "Search in",
		KeyTypeToSearch: "Type to search",
		KeyRecent:       "Recent",
	},
	"es": {
		KeySearch:       "Buscar...",
		KeyNoResults:    "Sin resultados",
		KeyLoading:      "Cargando...",
		KeySearchError:  "Error en la búsqueda",
		KeySearchIn:     "Buscar en",
		KeyTypeToSearch: "Escribe para buscar",
		KeyRecent:       "Recientes",
	},
	"fr": {
		KeySearch:       "Rechercher...",
		KeyNoResults:    "Aucun résultat",
		KeyLoading:      "Chargement...",
		KeySearchError:  "La recherche a échoué",
		KeySearchIn:     "Rechercher dans",
		KeyTypeToSearch: "Tapez pour rechercher",
		KeyRecent:       "Récents",
	},
	"de": {
		KeySearch:       "Suchen...",
		KeyNoResults:    "Keine Ergebnisse",
		KeyLoading:      "Laden...",
		KeySearchError:  "Suche fehlgeschlagen",
		KeySearchIn:     "Suchen in",
		KeyTypeToSearch: "Tippen zum Suchen",
		KeyRecent:       "Zuletzt verwendet",
	},
	"it": {
		KeySearch:       "Cerca...",
		KeyNoResults:    "Nessun risultato",
		KeyLoading:      "Caricamento...",
		KeySearchError:  "Ricerca non riuscita",
		KeySearchIn:     "Cerca in",
		KeyTypeToSearch: "Digita per cercare",
		KeyRecent:       "Recenti",
	},
	"pt": {
		KeySearch:       "Pesquisar...",
		KeyNoResults:    "Sem resultados",
		KeyLoading:      "Carregando...",
		KeySearchError:  "A pesquisa falhou",
		KeySearchIn:     "Pesquisar em",
		KeyTypeToSearch: "Digite para pesquisar",
		KeyRecent:       "Recentes",
	},
	"ru": {
		KeySearch:       "Поиск...",
		KeyNoResults:    "Нет результатов",
		KeyLoading:      "Загрузка...",
		KeySearchError:  "Ошибка поиска",
		KeySearchIn:     "Искать в",
		KeyTypeToSearch: "Начните вводить",
		KeyRecent:       "Недавние",
	},
	"zh": {
		KeySearch:       "搜索...",
		KeyNoResults:    "没有结果",
		KeyLoading:      "加载中...",
		KeySearchError:  "搜索失败",
		KeySearchIn:     "搜索范围",
		KeyTypeToSearch: "输入以搜索",
		KeyRecent:       "最近使用",
	},
	"ja": {
		KeySearch:       "検索...",
		KeyNoResults:    "結果なし",
		KeyLoading:      "読み込み中...",
		KeySearchError:  "検索に失敗しました",
		KeySearchIn:     "検索対象",
		KeyTypeToSearch: "入力して検索",
		KeyRecent:       "最近",
	},
	"ar": {
		KeySearch:       "بحث...",
		KeyNoResults:    "لا نتائج",
		KeyLoading:      "جار التحميل...",
		KeySearchError:  "فشل البحث",
		KeySearchIn:     "البحث في",
		KeyTypeToSearch: "اكتب للبحث",
		KeyRecent:       "الأخيرة",
	},
}

// T returns the translation of key in locale. Unknown locales fall back to
// English and unknown keys are returned unchanged.
func T(key, locale string) string {
	table, ok := translations[locale]
	if !ok {
		table = translations[DefaultLocale]
	}
	if s, ok := table[key]; ok {
		return s
	}
	return key
}

// Translations returns a copy of the table for locale, or English when unknown
func Translations(locale string) map[string]string {
	table, ok := translations[locale]
	if !ok {
		table = translations[DefaultLocale]
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

// NormalizeLocale reduces a locale such as "en-US" or "pt_BR" to its
// lower-cased two letter language code
func NormalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return DefaultLocale
	}
	runes := []rune(strings.ToLower(locale))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return string(runes)
}

// Supported reports whether the locale has its own table
func Supported(locale string) bool {
	_, ok := translations[locale]
	return ok
}
