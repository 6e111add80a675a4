//go:build !linux

package ui

func (w *Window) setNativeIcon() {}
