// Package framebuffer holds the grayscale frame shared between the main
// vision context and the debug-link context.
//
// Every access goes through a lock.Mutex. The main context writes with
// Write (or holds the mutex itself and uses Frame), and the debug context
// calls Snapshot, which only ever tries the lock once and reports ErrBusy
// instead of waiting:
//
//	fb := framebuffer.New(160, 120, framebuffer.WithCodec(framebuffer.CodecLZ4))
//	fb.Write(lock.TagMain, func(f *framebuffer.Frame) { f.Set(10, 10, 255) })
//	if _, err := fb.Snapshot(ctx, conn, lock.TagDebug); errors.Is(err, framebuffer.ErrBusy) {
//		// try again on the next poll
//	}
//
// Rows touched since the previous snapshot are tracked in a roaring bitmap,
// so a snapshot carries only changed rows. ApplySnapshot rebuilds the frame
// on the host side.
//
// # Snapshot format
//
// All integers are little-endian.
//
//	header  magic "VZFB" | version u8 | codec u8 | flags u8 | reserved u8 |
//	        width u32 | height u32 | sequence u32 | runs u32
//	block   uncompressed u32 | compressed u32 (0 = stored) | data
//	data    runs × (first row u32 | row count u32 | count×width pixels)
package framebuffer
