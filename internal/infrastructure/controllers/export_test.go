//go:build unit

package controllers

var SettingsFromFlags = settingsFromFlags
