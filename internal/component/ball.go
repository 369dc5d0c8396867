package component

// Ball tags an entity as the match ball. Speed is the scalar magnitude the
// velocity is re-pinned to after every bounce; it only ever grows.
// At most one ball exists while a round is in progress, none between rounds.
type Ball struct {
	Radius float32
	Speed  float32
}

// Bullet tags a short-lived projectile. Destroyed on any resolved collision.
type Bullet struct {
	Radius float32
}
