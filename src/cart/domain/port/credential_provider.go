package port

// CredentialProvider es el colaborador externo de autenticación.
// Entrega la credencial bearer y el flag de sesión autenticada; el
// subsistema de carrito nunca maneja login ni sesiones por sí mismo.
type CredentialProvider interface {
	// Token retorna la credencial y true si hay sesión autenticada
	Token() (string, bool)
}
