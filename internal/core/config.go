package core

// GameState is the simulated game's externally visible status.
type GameState struct {
	Score    int  // Frames survived in the current game
	GameOver bool // Whether the dino has crashed
	Airborne bool // Whether the dino is mid-jump
	Ducking  bool // Whether the dino is ducking
	Games    int  // Number of games started since the page opened
}
