package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/zach-portfolio/internal/catalog"
)

// projectsHandler answers one page view per request: a fresh fork of the
// shared catalog gets the request's category, search, sort and page.
func projectsHandler(projects *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := projects.Fork()

		if category := c.Query("category"); category != "" {
			view.SetCategoryFilter(category)
		}
		if search, ok := c.GetQuery("search"); ok {
			view.SetSearchTerm(search)
		}
		if sort := c.Query("sort"); sort != "" {
			if _, err := view.SetSortOrder(catalog.SortOrder(sort)); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   err.Error(),
					"allowed": catalog.SortOrders,
				})
				return
			}
		}

		page := 1
		if raw := c.Query("page"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				page = n
			}
		}

		c.JSON(http.StatusOK, view.GoToPage(page))
	}
}

func categoriesHandler(projects *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := projects.Result()
		c.JSON(http.StatusOK, gin.H{
			"status":     r.Status,
			"categories": r.Categories,
		})
	}
}
