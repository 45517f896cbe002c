// Package report renders the analysis: six chart images drawn with
// gonum/plot and a set of plain-text tables for the console.
//
// Charts are written to the charts directory as
//
//	quantity_distribution       histogram of Quantity
//	unit_price_distribution     histogram of UnitPrice
//	top_products                top products by quantity, horizontal bars
//	sales_over_time             monthly, daily, yearly and hourly totals
//	top_products_countries      top products and top countries
//	outlier_distributions       boxen, scatter and violin plots of the
//	                            rows below the outlier thresholds
//
// A panel without data is still drawn, titled "(no data)", and Render logs
// a warning for it instead of failing.
package report
