// Package yelpb provides an in-process Go client for normalized restaurant
// search over the Yelp conversational and listing APIs.
//
// The client runs the same pipeline as the HTTP service: lenient entity
// extraction, per-source daily quotas and the combined search that merges
// conversational and listing results, conversational first.
//
//	client, _ := yelpb.New(ctx,
//	    yelpb.WithAPIKey(os.Getenv("YELP_API_KEY")),
//	    yelpb.WithDailyLimit(500, true),
//	)
//	defer client.Close()
//
//	res, _ := client.Chat(ctx, yelpb.ChatParams{Query: "quiet italian place", Latitude: &lat, Longitude: &lon})
//	next, _ := client.Chat(ctx, yelpb.ChatParams{Query: "cheaper options?", ChatID: res.ChatID})
//
//	places, _ := client.Combined(ctx, yelpb.CombinedParams{Query: "ramen", Latitude: lat, Longitude: lon})
package yelpb
