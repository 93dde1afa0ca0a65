package provider

import "time"

var timeNow = time.Now
