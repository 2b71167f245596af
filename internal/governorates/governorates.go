// Package governorates holds the static reference table of Egypt's 27
// governorates. The data is compiled in and keyed by integer id;
// citizen and candidate rows store the id only and derive names from
// here at read time.
package governorates

import "strings"

type Governorate struct {
	ID          int64  `json:"id"`
	NameAr      string `json:"name_ar"`
	NameEn      string `json:"name_en"`
	Slug        string `json:"slug"`
	Region      string `json:"region"`
	Description string `json:"description,omitempty"`
}

// All returns the full table in id order. The returned slice is shared;
// callers must not mutate it.
func All() []Governorate {
	return table
}

// ByID returns the governorate with the given id, or nil.
func ByID(id int64) *Governorate {
	for i := range table {
		if table[i].ID == id {
			return &table[i]
		}
	}
	return nil
}

// BySlug returns the governorate with the given slug, or nil.
func BySlug(slug string) *Governorate {
	for i := range table {
		if table[i].Slug == slug {
			return &table[i]
		}
	}
	return nil
}

// IsValid reports whether id refers to a known governorate.
func IsValid(id int64) bool {
	return ByID(id) != nil
}

// NameAr returns the Arabic name for id, or "غير محدد" when unknown.
func NameAr(id int64) string {
	if g := ByID(id); g != nil {
		return g.NameAr
	}
	return "غير محدد"
}

// Search matches a case-insensitive substring against the Arabic name,
// English name, and description. An empty query returns the full table.
func Search(query string) []Governorate {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return All()
	}

	var out []Governorate
	for _, g := range table {
		if strings.Contains(strings.ToLower(g.NameAr), query) ||
			strings.Contains(strings.ToLower(g.NameEn), query) ||
			strings.Contains(strings.ToLower(g.Description), query) {
			out = append(out, g)
		}
	}
	return out
}

// ByRegion groups the table by region, preserving id order within each
// group.
func ByRegion() map[string][]Governorate {
	regions := make(map[string][]Governorate)
	for _, g := range table {
		regions[g.Region] = append(regions[g.Region], g)
	}
	return regions
}

var table = []Governorate{
	{ID: 1, NameAr: "القاهرة", NameEn: "Cairo", Slug: "cairo", Region: "القاهرة الكبرى"},
	{ID: 2, NameAr: "الجيزة", NameEn: "Giza", Slug: "giza", Region: "القاهرة الكبرى"},
	{ID: 3, NameAr: "الإسكندرية", NameEn: "Alexandria", Slug: "alexandria", Region: "الساحل الشمالي"},
	{ID: 4, NameAr: "الدقهلية", NameEn: "Dakahlia", Slug: "dakahlia", Region: "الدلتا"},
	{ID: 5, NameAr: "البحر الأحمر", NameEn: "Red Sea", Slug: "red-sea", Region: "الصحراء الشرقية"},
	{ID: 6, NameAr: "البحيرة", NameEn: "Beheira", Slug: "beheira", Region: "الدلتا"},
	{ID: 7, NameAr: "الفيوم", NameEn: "Fayoum", Slug: "fayoum", Region: "شمال الصعيد"},
	{ID: 8, NameAr: "الغربية", NameEn: "Gharbia", Slug: "gharbia", Region: "الدلتا"},
	{ID: 9, NameAr: "الإسماعيلية", NameEn: "Ismailia", Slug: "ismailia", Region: "القناة"},
	{ID: 10, NameAr: "المنوفية", NameEn: "Menofia", Slug: "menofia", Region: "الدلتا"},
	{ID: 11, NameAr: "المنيا", NameEn: "Minya", Slug: "minya", Region: "شمال الصعيد"},
	{ID: 12, NameAr: "القليوبية", NameEn: "Qalyubia", Slug: "qalyubia", Region: "القاهرة الكبرى"},
	{ID: 13, NameAr: "الوادي الجديد", NameEn: "New Valley", Slug: "new-valley", Region: "الصحراء الغربية"},
	{ID: 14, NameAr: "السويس", NameEn: "Suez", Slug: "suez", Region: "القناة"},
	{ID: 15, NameAr: "أسوان", NameEn: "Aswan", Slug: "aswan", Region: "جنوب الصعيد"},
	{ID: 16, NameAr: "أسيوط", NameEn: "Assiut", Slug: "assiut", Region: "شمال الصعيد"},
	{ID: 17, NameAr: "بني سويف", NameEn: "Beni Suef", Slug: "beni-suef", Region: "شمال الصعيد"},
	{ID: 18, NameAr: "بورسعيد", NameEn: "Port Said", Slug: "port-said", Region: "القناة"},
	{ID: 19, NameAr: "دمياط", NameEn: "Damietta", Slug: "damietta", Region: "الدلتا"},
	{ID: 20, NameAr: "الشرقية", NameEn: "Sharkia", Slug: "sharkia", Region: "الدلتا"},
	{ID: 21, NameAr: "جنوب سيناء", NameEn: "South Sinai", Slug: "south-sinai", Region: "سيناء"},
	{ID: 22, NameAr: "كفر الشيخ", NameEn: "Kafr El Sheikh", Slug: "kafr-el-sheikh", Region: "الدلتا"},
	{ID: 23, NameAr: "مطروح", NameEn: "Matrouh", Slug: "matrouh", Region: "الساحل الشمالي"},
	{ID: 24, NameAr: "الأقصر", NameEn: "Luxor", Slug: "luxor", Region: "جنوب الصعيد"},
	{ID: 25, NameAr: "قنا", NameEn: "Qena", Slug: "qena", Region: "جنوب الصعيد"},
	{ID: 26, NameAr: "شمال سيناء", NameEn: "North Sinai", Slug: "north-sinai", Region: "سيناء"},
	{ID: 27, NameAr: "سوهاج", NameEn: "Sohag", Slug: "sohag", Region: "جنوب الصعيد"},
}
