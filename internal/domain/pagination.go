package domain

// PageParams - параметры пагинации списочных запросов
// Limit = 0 по соглашению означает "без пагинации" - возвращаются все строки
type PageParams struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Validate проверяет корректность параметров пагинации
func (p PageParams) Validate() error {
	if p.Limit < 0 || p.Offset < 0 {
		return ErrInvalidPagination
	}
	return nil
}

// Pages вычисляет число страниц для известного общего числа строк.
// При Limit = 0 (без пагинации) всегда одна страница
func (p PageParams) Pages(total int) int {
	if p.Limit <= 0 {
		return 1
	}
	return (total + p.Limit - 1) / p.Limit
}

// Page - стандартный конверт списочного ответа
type Page struct {
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Pages  int         `json:"pages"`
	Data   interface{} `json:"data"`
}

// NewPage собирает конверт списочного ответа
func NewPage(params PageParams, total int, data interface{}) *Page {
	return &Page{
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
		Pages:  params.Pages(total),
		Data:   data,
	}
}
