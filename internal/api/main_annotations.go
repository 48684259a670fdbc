// @title           bookmarks API
// @version         1.0
// @description     Store, list, fetch, update and delete bookmarks. Authenticate with the shared API token.
// @BasePath        /
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and the API token. Example: "Bearer bm_xxx"
package api
