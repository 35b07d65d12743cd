package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPageParams_Validate тестирует валидацию параметров пагинации
func TestPageParams_Validate(t *testing.T) {
	assert.NoError(t, PageParams{Limit: 10, Offset: 0}.Validate())
	assert.NoError(t, PageParams{Limit: 0, Offset: 0}.Validate())

	assert.ErrorIs(t, PageParams{Limit: -1}.Validate(), ErrInvalidPagination)
	assert.ErrorIs(t, PageParams{Offset: -5}.Validate(), ErrInvalidPagination)
}

// TestPageParams_Pages тестирует вычисление числа страниц
func TestPageParams_Pages(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		total int
		want  int
	}{
		{"ровное деление", 10, 100, 10},
		{"с остатком", 10, 101, 11},
		{"меньше одной страницы", 10, 3, 1},
		{"пустой результат", 10, 0, 0},
		{"без пагинации всегда одна страница", 0, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PageParams{Limit: tt.limit}
			assert.Equal(t, tt.want, p.Pages(tt.total))
		})
	}
}

// TestNewPage тестирует сборку конверта списочного ответа
func TestNewPage(t *testing.T) {
	data := []string{"a", "b"}
	page := NewPage(PageParams{Limit: 10, Offset: 20}, 42, data)

	assert.Equal(t, 42, page.Total)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 20, page.Offset)
	assert.Equal(t, 5, page.Pages)
	assert.Equal(t, data, page.Data.([]string))
}
