// Package teaui is the interactive terminal list view.
package teaui
