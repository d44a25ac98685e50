package auth

import "os"

// EnvCredentialProvider lee la credencial bearer del entorno.
// Es el adaptador mínimo del colaborador externo de autenticación:
// el subsistema de carrito solo necesita el token y el flag de sesión.
type EnvCredentialProvider struct{}

// Token retorna la credencial de CART_AUTH_TOKEN y si hay sesión
func (EnvCredentialProvider) Token() (string, bool) {
	token := os.Getenv("CART_AUTH_TOKEN")
	return token, token != ""
}

// StaticCredentialProvider entrega una credencial fija.
// Útil para tests y para inyectar el token de un request entrante.
type StaticCredentialProvider struct {
	Bearer        string
	Authenticated bool
}

// Token retorna la credencial configurada
func (p StaticCredentialProvider) Token() (string, bool) {
	return p.Bearer, p.Authenticated
}
