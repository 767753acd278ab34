package main

import "devconnector/cmd"

// @title           devconnector API
// @version         1.0
// @description     Posts, likes, comments and user accounts for the developer network.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and the JWT.
func main() {
	cmd.Execute()
}
