package service

import "time"

// timeNow is swapped out by tests that need stable timestamps.
var timeNow = time.Now
