// Package bot adapts Discord gateway events to the feature services.
//
// Slash commands, context menu commands and prefix messages ("nano, ask ...")
// share one command registry. Other chat messages go through the classifier,
// which routes thanks, math, praise and foreign-language messages. Replies
// that render math follow edits of their source message for a while.
package bot
