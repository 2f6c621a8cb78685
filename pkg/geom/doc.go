// Package geom provides the 2-D geometric primitives shared by the track
// map kernel: points, rectangles, circles, polygons and polylines, with
// containment tests and bounding boxes for coarse spatial rejection.
//
// Shapes are value types. None of them own any state beyond their own
// geometry; callers that need to associate a shape with an entity (an
// Area, a Sector, a Path) do so by storing an id alongside it, the same
// way the rest of the kernel resolves cross-references through ids
// instead of pointers.
package geom
