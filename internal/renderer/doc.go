// Package renderer is a fixed-pipeline software rasterizer for the CCTV street set.
//
// Pipeline (fixed):
//
//	Scene → World transform → Projection → Near clipping → Rasterization → Shading → Frame.
//
// Shading is per pixel: a Lambert diffuse term for the ambient fill and every spot light,
// ray-cast box shadows for shadow-casting meshes, ACES filmic tone mapping with exposure,
// sRGB encoding and exponential-squared fog. The screen-space overlay pass draws
// alpha-blended line segments on top of the finished frame.
//
// A Renderer owns its depth buffer and is not safe for concurrent use; create one per
// goroutine. The scene itself is read-only during rendering.
package renderer
