package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// PageSize is the fixed admin-listing page size.
const PageSize = 50

// ParsePage reads the page query param; anything unparsable or below 1 maps
// to the first page.
func ParsePage(c *fiber.Ctx) int {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// TotalPages is ceil(total/pageSize) with a floor of one, so an empty data
// set still reports a single page.
func TotalPages(total int64, pageSize int) int {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		return 1
	}
	return pages
}
