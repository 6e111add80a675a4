//go:build linux

package ui

/*
#cgo pkg-config: gtk+-3.0
#include <stdlib.h>
#include <gtk/gtk.h>

// Decodes an in-memory image through a pixbuf loader and sets it as the
// window icon. Returns 0 on success.
static int rosterwatch_icon_from_bytes(void* win, const void* data, size_t len) {
  GdkPixbufLoader* loader = gdk_pixbuf_loader_new();
  GError* err = NULL;
  int rc = 1;

  gboolean wrote = gdk_pixbuf_loader_write(loader, (const guchar*)data, len, &err);
  gboolean closed = gdk_pixbuf_loader_close(loader, wrote ? &err : NULL);
  if (wrote && closed) {
    GdkPixbuf* pb = gdk_pixbuf_loader_get_pixbuf(loader);
    if (pb != NULL) {
      gtk_window_set_icon(GTK_WINDOW(win), pb);
      rc = 0;
    }
  }
  if (err != NULL) g_error_free(err);
  g_object_unref(loader);
  return rc;
}
*/
import "C"

// setNativeIcon hands the embedded logo to GTK straight from memory.
func (w *Window) setNativeIcon() {
	win := w.wv.Window()
	if win == nil {
		return
	}
	logo, err := assets.ReadFile("assets/logo.svg")
	if err != nil || len(logo) == 0 {
		w.log.Debug("window icon skipped", "error", err)
		return
	}

	buf := C.CBytes(logo)
	defer C.free(buf)
	if C.rosterwatch_icon_from_bytes(win, buf, C.size_t(len(logo))) != 0 {
		w.log.Debug("window icon skipped", "error", "pixbuf loader rejected logo")
	}
}
